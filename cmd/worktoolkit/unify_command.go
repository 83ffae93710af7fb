package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"worktoolkit/internal/feature"
	"worktoolkit/internal/fileutil"
	"worktoolkit/internal/journal"
	"worktoolkit/internal/logging"
	"worktoolkit/internal/pdfops"
	"worktoolkit/internal/planner"
	"worktoolkit/internal/scheduler"
)

type unifyFlags struct {
	p1          int
	p2          int
	indexOn     string
	indexFilter string
	emitScope   string
	outDirName  string
	optimize    string
	jobs        int
	serial      bool
	yes         bool

	jpegRecompress    bool
	jpegQuality       int
	jpegMinKB         int
	jpegOnlyIfSmaller bool
}

func newUnifyCommand(ctx *commandContext) *cobra.Command {
	var flags unifyFlags

	cmd := &cobra.Command{
		Use:   "unify <target-dir>",
		Short: "Group PDFs by a filename feature and merge each group",
		Long: `Extracts a feature from every PDF base name in the target directory,
groups the files that share it, and merges each group into one output
document. The plan is shown for review before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnify(cmd, ctx, args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.p1, "p1", 0, "First character of the feature range (1-based, inclusive)")
	cmd.Flags().IntVar(&flags.p2, "p2", 0, "Last character of the feature range (1-based, inclusive)")
	cmd.Flags().StringVar(&flags.indexOn, "index-on", "original", "Indexing basis: original or filtered")
	cmd.Flags().StringVar(&flags.indexFilter, "index-filter", "digits", "Filter building the basis when indexing on filtered: digits, letters, alnum, all")
	cmd.Flags().StringVar(&flags.emitScope, "emit-scope", "all", "Filter applied to the extracted feature: digits, letters, alnum, all")
	cmd.Flags().StringVar(&flags.outDirName, "out-dir-name", "", "Output directory name inside the target directory")
	cmd.Flags().StringVar(&flags.optimize, "optimize", "", "Optimization level: none, light, full")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "Worker count (0 uses the configured default)")
	cmd.Flags().BoolVar(&flags.serial, "serial", false, "Process groups one at a time")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.jpegRecompress, "jpeg-recompress", true, "Recompress embedded images as JPEG")
	cmd.Flags().IntVar(&flags.jpegQuality, "jpeg-quality", 0, "JPEG quality 1-100 (0 uses the configured default)")
	cmd.Flags().IntVar(&flags.jpegMinKB, "jpeg-min-kb", 0, "Skip images smaller than this many KB (0 uses the configured default)")
	cmd.Flags().BoolVar(&flags.jpegOnlyIfSmaller, "jpeg-only-if-smaller", true, "Keep the original image when recompression grows it")

	_ = cmd.MarkFlagRequired("p1")
	_ = cmd.MarkFlagRequired("p2")

	return cmd
}

func runUnify(cmd *cobra.Command, ctx *commandContext, targetDir string, flags unifyFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	basis, err := feature.ParseBasis(flags.indexOn)
	if err != nil {
		return err
	}
	indexFilter, err := feature.ParseFilter(flags.indexFilter)
	if err != nil {
		return err
	}
	emitScope, err := feature.ParseFilter(flags.emitScope)
	if err != nil {
		return err
	}
	featureCfg := feature.Config{
		P1:          flags.p1,
		P2:          flags.p2,
		Basis:       basis,
		IndexFilter: indexFilter,
		EmitScope:   emitScope,
	}
	if err := featureCfg.Validate(); err != nil {
		return err
	}

	outDirName := flags.outDirName
	if outDirName == "" {
		outDirName = cfg.Unify.OutDirName
	}
	optimizeValue := flags.optimize
	if optimizeValue == "" {
		optimizeValue = cfg.Unify.Optimize
	}
	level, err := pdfops.ParseLevel(optimizeValue)
	if err != nil {
		return err
	}

	img := pdfops.ImageOptions{
		Enabled:       cfg.Unify.JPEG.Recompress,
		Quality:       cfg.Unify.JPEG.Quality,
		MinKB:         cfg.Unify.JPEG.MinKB,
		OnlyIfSmaller: cfg.Unify.JPEG.OnlyIfSmaller,
	}
	if cmd.Flags().Changed("jpeg-recompress") {
		img.Enabled = flags.jpegRecompress
	}
	if flags.jpegQuality > 0 {
		img.Quality = flags.jpegQuality
	}
	if flags.jpegMinKB > 0 {
		img.MinKB = flags.jpegMinKB
	}
	if cmd.Flags().Changed("jpeg-only-if-smaller") {
		img.OnlyIfSmaller = flags.jpegOnlyIfSmaller
	}

	workers := flags.jobs
	if workers < 1 {
		workers = cfg.EffectiveWorkers()
	}

	target, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolve target directory: %w", err)
	}

	sources, err := planner.Discover(target)
	if err != nil {
		return err
	}

	outDir := filepath.Join(target, outDirName)
	plan, err := planner.Build(sources, featureCfg, outDir, planProgress(len(sources)))
	if err != nil {
		return err
	}

	printPlan(cmd, plan, len(sources))

	if len(plan.Groups) == 0 {
		fmt.Fprintln(out, "No groups to unify.")
		return nil
	}

	if !flags.yes {
		ok, err := confirmPlan(cmd)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Plan discarded; nothing was written.")
			return nil
		}
	}

	if err := fileutil.EnsureDir(outDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(outDir, ".worktoolkit.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another unify run is writing to %s", outDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	startedAt := time.Now()
	runID := uuid.NewString()
	runLogger := withRunID(logger, runID)
	tasks := make([]scheduler.Task, 0, len(plan.Groups))
	for _, g := range plan.Groups {
		tasks = append(tasks, scheduler.Task{
			Key:      g.Key,
			DestPath: plan.DestPath(g),
			Sources:  g.Sources,
		})
	}

	var bar *progressbar.ProgressBar
	if stderrIsTerminal() {
		bar = newProgressBar(len(tasks), "unifying groups")
	}

	var records []journal.GroupRecord
	results := scheduler.Run(cmd.Context(), tasks, scheduler.Options{
		Workers: workers,
		Serial:  flags.serial,
		Logger:  logging.NewComponentLogger(runLogger, "unify"),
		Process: func(taskCtx context.Context, task scheduler.Task) (int, error) {
			return pdfops.UnifyGroup(taskCtx, task.DestPath, task.Sources, level, img, runLogger)
		},
		OnResult: func(res scheduler.Result) {
			if bar != nil {
				_ = bar.Add(1)
			}
			rec := journal.GroupRecord{
				Key:      res.Key,
				Sources:  res.SourceCount,
				Replaced: res.Replaced,
				Status:   "ok",
			}
			if res.Err != nil {
				rec.Status = "error"
				rec.Message = res.Err.Error()
			}
			records = append(records, rec)
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}

	failed := scheduler.Failed(results)
	settings := fmt.Sprintf("p1=%d p2=%d basis=%s index-filter=%s emit-scope=%s optimize=%s recompress=%t quality=%d",
		flags.p1, flags.p2, basis, indexFilter, emitScope, level, img.Enabled, img.Quality)
	recordRun(cmd.Context(), cfg.JournalPath(), journal.Run{
		ID:        runID,
		TargetDir: target,
		OutDir:    outDir,
		Settings:  settings,
		StartedAt: startedAt,
		Groups:    len(plan.Groups),
		Skipped:   plan.Skipped,
		Failed:    failed,
	}, records, runLogger)

	fmt.Fprintf(out, "Unified %d of %d groups into %s\n", len(plan.Groups)-failed, len(plan.Groups), outDir)
	if failed > 0 {
		fmt.Fprintf(out, "%d group(s) failed; see the log for details\n", failed)
	}
	return nil
}

func printPlan(cmd *cobra.Command, plan *planner.Plan, sourceCount int) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(plan.Groups))
	for _, g := range plan.Groups {
		rows = append(rows, []string{g.Key, g.OutputName, strconv.Itoa(len(g.Sources))})
	}
	fmt.Fprintln(out, renderTable([]string{"FEATURE", "OUTPUT", "SOURCES"}, rows, 2))
	fmt.Fprintf(out, "%d file(s) -> %d group(s), %d skipped\n", sourceCount, len(plan.Groups), plan.Skipped)
	fmt.Fprintf(out, "Output directory: %s\n", plan.OutDir)
}

func confirmPlan(cmd *cobra.Command) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Proceed? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return isAffirmative(line), nil
}

// withRunID tags every log record of a run with its identifier, the same
// one the journal stores.
func withRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(logging.String(logging.FieldRunID, runID))
}

// isAffirmative accepts English and Spanish confirmation forms.
func isAffirmative(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func planProgress(total int) func(done, total int) {
	if !stderrIsTerminal() || total < 1 {
		return nil
	}
	bar := newProgressBar(total, "scanning names")
	return func(done, _ int) {
		_ = bar.Set(done)
		if done >= total {
			_ = bar.Finish()
		}
	}
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func recordRun(ctx context.Context, dbPath string, run journal.Run, groups []journal.GroupRecord, logger *slog.Logger) {
	store, err := journal.Open(dbPath)
	if err != nil {
		logger.Warn("run journal unavailable", logging.Args(logging.Error(err))...)
		return
	}
	defer store.Close()
	if err := store.RecordRun(ctx, run, groups); err != nil {
		logger.Warn("failed to record run", logging.Args(logging.Error(err))...)
	}
}
