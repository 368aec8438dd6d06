// File: cmd/demo.go
package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/keyfence/internal/config"
	"github.com/xkilldash9x/keyfence/internal/observability"
	"github.com/xkilldash9x/keyfence/pkg/dom"
	"github.com/xkilldash9x/keyfence/pkg/focus"
	"github.com/xkilldash9x/keyfence/pkg/form"
	"github.com/xkilldash9x/keyfence/pkg/toast"
)

// demoMarkup is the document the walkthrough runs against: an outside
// control, a dialog to trap focus in, and a two-stage form.
const demoMarkup = `<html><body>
	<button id="open">Open dialog</button>
	<div id="dialog">
		<input id="name" type="text">
		<button id="ok">OK</button>
		<button id="cancel">Cancel</button>
	</div>
	<div id="signup">
		<div id="stage-account">
			<input id="email" type="email">
			<button id="to-profile">Continue</button>
		</div>
		<div id="stage-profile">
			<input id="nickname" type="text">
			<button id="finish">Finish</button>
		</div>
	</div>
</body></html>`

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted focus containment walkthrough and log every step.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return err
		}

		logger := observability.GetLogger().Named("demo")
		step := stepFunc(logger, cfg.Demo)

		doc := dom.MustParse(demoMarkup)
		doc.SetTabNavigator(focus.Navigator(doc))

		runTrapDemo(doc, logger, step)
		runFormDemo(doc, logger, step)
		runToastDemo(logger, step)
		return nil
	},
}

func stepFunc(logger *zap.Logger, cfg config.DemoConfig) func(string) {
	delay := time.Duration(cfg.StepDelayMs) * time.Millisecond
	return func(msg string) {
		logger.Info(msg)
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

func runTrapDemo(doc *dom.Document, logger *zap.Logger, step func(string)) {
	dialog := doc.QuerySelector("#dialog")
	opener := doc.QuerySelector("#open")

	trap := focus.New(focus.NewOptions().
		Target(dialog).
		DeactivateOnEscape(true).
		Hooks(focus.Hooks{
			Activate:   func() { dialog.SetAttr("data-trap-active", "") },
			Deactivate: func() { dialog.RemoveAttr("data-trap-active") },
		}).
		Build())
	defer trap.Close()

	step("clicking the opener and activating the dialog trap")
	doc.Click(opener)
	trap.Activate()
	doc.Flush()
	logger.Info("focus after activation", zap.Stringer("active", doc.ActiveElement()))

	step("tabbing forward through the dialog; order wraps at the end")
	for i := 0; i < 4; i++ {
		doc.Keydown(dom.KeyTab, false)
		logger.Info("tab", zap.Stringer("active", doc.ActiveElement()))
	}

	step("clicking outside the dialog; the trap suppresses it")
	doc.Click(opener)
	logger.Info("focus held", zap.Stringer("active", doc.ActiveElement()))

	step("pressing Escape; the trap deactivates and returns focus")
	doc.Keydown(dom.KeyEscape, false)
	doc.Flush()
	logger.Info("focus after release", zap.Stringer("active", doc.ActiveElement()))
}

func runFormDemo(doc *dom.Document, logger *zap.Logger, step func(string)) {
	container := doc.QuerySelector("#signup")
	f := form.NewBuilder().
		Container(container).
		AddStages(
			form.NewStage(doc.QuerySelector("#stage-account")),
			form.NewStage(doc.QuerySelector("#stage-profile")),
		).
		Logger(logger.Named("form")).
		Build()
	defer f.Close()

	step("activating the two-stage form")
	f.Activate()
	doc.Flush()
	logger.Info("stage", zap.Int("current", f.Current()), zap.Stringer("active", doc.ActiveElement()))

	step("tabbing inside the account stage; the profile stage is skipped")
	doc.Keydown(dom.KeyTab, false)
	doc.Keydown(dom.KeyTab, false)
	logger.Info("wrapped", zap.Stringer("active", doc.ActiveElement()))

	step("advancing to the profile stage")
	f.Next()
	doc.Flush()
	logger.Info("stage", zap.Int("current", f.Current()), zap.Stringer("active", doc.ActiveElement()))

	f.Deactivate()
	doc.Flush()
}

func runToastDemo(logger *zap.Logger, step func(string)) {
	store := toast.New(toast.DefaultOptions().WithLogger(logger.Named("toast")))
	defer store.Shutdown()

	token := store.Subscribe(func(ev toast.Event) {
		logger.Info("toast event", zap.Int("kind", int(ev.Kind)), zap.Stringer("handle", ev.Handle))
	})
	defer store.Unsubscribe(token)

	step("publishing a toast and dismissing it")
	handle := store.Add(toast.NewBuilder().
		Title("Walkthrough complete").
		Description("All traps released cleanly.").
		Timeout(toast.NoTimeout()).
		Build())
	store.Dismiss(handle, toast.DismissUser)
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
