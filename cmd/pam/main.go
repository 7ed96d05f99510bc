package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pam/internal/apply"
	"github.com/san-kum/pam/internal/config"
	"github.com/san-kum/pam/internal/diff"
	"github.com/san-kum/pam/internal/lifecycle"
	"github.com/san-kum/pam/internal/preset"
	"github.com/san-kum/pam/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	heading = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// app carries the global flags and what PersistentPreRunE derives from them.
type app struct {
	storePath  string
	configPath string
	logLevel   string
	assumeYes  bool

	cfg *config.Config
	log *slog.Logger

	// per-command flags
	all         bool
	format      string
	basedOn     string
	from        string
	settings    []string
	description string
	against     string
	plot        bool
	targets     []string
	out         string
	writeConfig string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "pam",
		Short:             "nCloth preset manager",
		SilenceUsage:      true,
		RunE:              a.runTUI,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringVar(&a.storePath, "store", "", "preset store file or directory")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&a.assumeYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.Flags().StringSliceVar(&a.targets, "target", nil, "objects to apply presets to")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  a.listPresets,
	}
	listCmd.Flags().BoolVar(&a.all, "all", false, "include hidden presets")

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "show preset values",
		Args:  cobra.ExactArgs(1),
		RunE:  a.showPreset,
	}
	showCmd.Flags().StringVar(&a.format, "format", "table", "table, yaml or json")

	saveCmd := &cobra.Command{
		Use:   "save [name]",
		Short: "save the current controls as a new preset",
		Args:  cobra.ExactArgs(1),
		RunE:  a.savePreset,
	}
	a.snapshotFlags(saveCmd)
	saveCmd.Flags().StringVar(&a.description, "description", "", "preset description")

	deleteCmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "delete a user preset",
		Args:  cobra.ExactArgs(1),
		RunE:  a.deletePreset,
	}

	matchCmd := &cobra.Command{
		Use:   "match [name]",
		Short: "print name when the controls still match it, Custom otherwise",
		Args:  cobra.ExactArgs(1),
		RunE:  a.matchPreset,
	}
	matchCmd.Flags().StringVar(&a.from, "from", "", "controls snapshot (yaml)")
	matchCmd.Flags().StringArrayVar(&a.settings, "set", nil, "attribute override key=value")

	diffCmd := &cobra.Command{
		Use:   "diff [name]",
		Short: "compare the controls against a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  a.diffPreset,
	}
	diffCmd.Flags().StringVar(&a.from, "from", "", "controls snapshot (yaml)")
	diffCmd.Flags().StringArrayVar(&a.settings, "set", nil, "attribute override key=value")
	diffCmd.Flags().StringVar(&a.against, "against", "", "compare with another preset")
	diffCmd.Flags().BoolVar(&a.plot, "plot", false, "plot relative change per attribute")

	applyCmd := &cobra.Command{
		Use:   "apply [name]",
		Short: "write a MEL script applying a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  a.applyPreset,
	}
	applyCmd.Flags().StringVar(&a.from, "from", "", "controls snapshot (yaml)")
	applyCmd.Flags().StringArrayVar(&a.settings, "set", nil, "attribute override key=value")
	applyCmd.Flags().StringSliceVar(&a.targets, "target", nil, "objects to apply to")
	applyCmd.Flags().StringVarP(&a.out, "out", "o", "", "script file (default stdout)")

	collideCmd := &cobra.Command{
		Use:   "collide",
		Short: "write a MEL script making objects passive colliders",
		Args:  cobra.NoArgs,
		RunE:  a.collide,
	}
	collideCmd.Flags().StringSliceVar(&a.targets, "target", nil, "objects to make colliders")
	collideCmd.Flags().StringVarP(&a.out, "out", "o", "", "script file (default stdout)")

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "export user presets (.json or .yaml)",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportPresets,
	}

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "import presets from an export file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.importPresets,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive preset editor",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}
	tuiCmd.Flags().StringSliceVar(&a.targets, "target", nil, "objects to apply presets to")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  a.showConfig,
	}
	configCmd.Flags().StringVar(&a.writeConfig, "write", "", "also write it to this file")

	rootCmd.AddCommand(listCmd, showCmd, saveCmd, deleteCmd, matchCmd, diffCmd, applyCmd, collideCmd, exportCmd, importCmd, tuiCmd, configCmd)
	return rootCmd
}

func (a *app) snapshotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.basedOn, "based-on", preset.NameCustom, "preset the controls start from")
	cmd.Flags().StringVar(&a.from, "from", "", "controls snapshot (yaml), overrides --based-on")
	cmd.Flags().StringArrayVar(&a.settings, "set", nil, "attribute override key=value")
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOptional(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.assumeYes {
		cfg.AssumeYes = true
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if len(a.targets) == 0 && cfg.Target != "" {
		a.targets = strings.Split(cfg.Target, ",")
	}
	return nil
}

func (a *app) open(cmd *cobra.Command, opts ...lifecycle.Option) (*lifecycle.Session, error) {
	var confirm lifecycle.Confirmer = lifecycle.AlwaysConfirm
	if !a.cfg.AssumeYes {
		confirm = newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	base := []lifecycle.Option{lifecycle.WithLogger(a.log), lifecycle.WithConfirmer(confirm)}
	path := a.cfg.ResolveStorePath(a.storePath)
	a.log.Debug("opening preset store", "path", path)
	return lifecycle.Open(path, append(base, opts...)...)
}

func (a *app) listPresets(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	cat := sess.Catalog()
	names := cat.Selectable()
	if a.all {
		names = cat.Names()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tDESCRIPTION")
	for _, name := range names {
		p, _ := cat.Get(name)
		kind := "user"
		if preset.IsBuiltin(name) {
			kind = "built-in"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, kind, clip(p.Description(), 60))
	}
	return w.Flush()
}

func (a *app) showPreset(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	p, ok := sess.Catalog().Get(args[0])
	if !ok {
		return &lifecycle.NotFoundError{Name: args[0]}
	}
	out := cmd.OutOrStdout()

	switch a.format {
	case "yaml":
		data, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "table":
	default:
		return fmt.Errorf("unknown format %q", a.format)
	}

	fmt.Fprintln(out, heading.Render(p.Name()))
	if p.Description() != "" {
		fmt.Fprintln(out, subtle.Width(72).Render(p.Description()))
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range preset.Fields() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Label, f.Key, f.Format(p.Params()))
	}
	return w.Flush()
}

func (a *app) savePreset(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	snap, err := buildSnapshot(sess.Catalog(), a.basedOn, a.from, a.settings)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("description") {
		snap.Description = a.description
	}
	snap.Name = args[0]

	p, err := sess.Save(snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", p.Name())
	return nil
}

func (a *app) deletePreset(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	if err := sess.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.TrimSpace(args[0]))
	return nil
}

func (a *app) matchPreset(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	cat := sess.Catalog()
	p, ok := cat.Get(args[0])
	if !ok {
		return &lifecycle.NotFoundError{Name: args[0]}
	}
	snap, err := buildSnapshot(cat, args[0], a.from, a.settings)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), diff.MatchPreset(snap, p))
	return nil
}

func (a *app) diffPreset(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	cat := sess.Catalog()
	p, ok := cat.Get(args[0])
	if !ok {
		return &lifecycle.NotFoundError{Name: args[0]}
	}
	original := preset.SnapshotOf(p)

	var live preset.Snapshot
	if a.against != "" {
		other, ok := cat.Get(a.against)
		if !ok {
			return &lifecycle.NotFoundError{Name: a.against}
		}
		live = preset.SnapshotOf(other)
	} else if live, err = buildSnapshot(cat, args[0], a.from, a.settings); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "name: %s\n", diff.DerivedName(diff.StripCustomPrefix(p.Name()), live, original))
	changes := diff.Changes(live, original)
	if len(changes) == 0 {
		fmt.Fprintln(out, "no changes")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tFROM\tTO\tDELTA")
	for _, c := range changes {
		delta := ""
		if c.Key != "description" {
			delta = fmt.Sprintf("%+.3f", c.Delta)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Label, c.From, c.To, delta)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if a.plot {
		fmt.Fprintln(out)
		fmt.Fprintln(out, relativeChangePlot(live, original))
	}
	return nil
}

// relativeChangePlot charts each attribute's change as a fraction of its
// slider range, in attribute order.
func relativeChangePlot(live, original preset.Snapshot) string {
	fields := preset.Fields()
	data := make([]float64, len(fields))
	for i, f := range fields {
		span := f.Max - f.Min
		if span <= 0 {
			continue
		}
		data[i] = (f.Get(live.Params) - f.Get(original.Params)) / span
		if math.IsNaN(data[i]) || math.IsInf(data[i], 0) {
			data[i] = 0
		}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("relative change by attribute"),
	)
}

func (a *app) applyPreset(cmd *cobra.Command, args []string) error {
	var script bytes.Buffer
	sess, err := a.open(cmd, lifecycle.WithApplier(apply.NewMEL(&script)))
	if err != nil {
		return err
	}
	if _, err := sess.Select(args[0]); err != nil {
		return err
	}
	live, err := buildSnapshot(sess.Catalog(), args[0], a.from, a.settings)
	if err != nil {
		return err
	}
	live.Name = sess.Editor().DisplayName(live)

	p, err := sess.Apply(cmd.Context(), live, a.targets)
	if err != nil {
		return err
	}
	a.log.Info("applied preset", "preset", p.Name(), "targets", len(a.targets))
	return a.writeScript(cmd, &script)
}

func (a *app) collide(cmd *cobra.Command, args []string) error {
	var script bytes.Buffer
	sess, err := a.open(cmd, lifecycle.WithApplier(apply.NewMEL(&script)))
	if err != nil {
		return err
	}
	if err := sess.Collide(cmd.Context(), a.targets); err != nil {
		return err
	}
	a.log.Info("made passive colliders", "targets", len(a.targets))
	return a.writeScript(cmd, &script)
}

// writeScript sends a finished script to --out or stdout. Nothing is written
// unless the command succeeded.
func (a *app) writeScript(cmd *cobra.Command, script *bytes.Buffer) error {
	if a.out == "" {
		_, err := script.WriteTo(cmd.OutOrStdout())
		return err
	}
	return os.WriteFile(a.out, script.Bytes(), 0644)
}

func (a *app) exportPresets(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	n, err := sess.Export(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d presets to %s\n", n, args[0])
	return nil
}

func (a *app) importPresets(cmd *cobra.Command, args []string) error {
	sess, err := a.open(cmd)
	if err != nil {
		return err
	}
	saved, errs, err := sess.Import(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range saved {
		fmt.Fprintf(out, "imported %s\n", name)
	}
	for _, e := range errs {
		a.log.Warn("preset not imported", "err", e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d presets not imported", len(errs), len(errs)+len(saved))
	}
	return nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	var script bytes.Buffer
	gate := &tui.Gate{}
	sess, err := lifecycle.Open(a.cfg.ResolveStorePath(a.storePath),
		lifecycle.WithLogger(a.log),
		lifecycle.WithConfirmer(gate),
		lifecycle.WithApplier(apply.NewMEL(&script)),
	)
	if err != nil {
		return err
	}
	if err := tui.Run(cmd.Context(), sess, gate, a.targets); err != nil {
		return err
	}
	_, err = script.WriteTo(cmd.OutOrStdout())
	return err
}

func (a *app) showConfig(cmd *cobra.Command, args []string) error {
	cfg := *a.cfg
	cfg.StorePath = a.cfg.ResolveStorePath(a.storePath)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}
	if a.writeConfig != "" {
		return config.Save(a.writeConfig, &cfg)
	}
	return nil
}
