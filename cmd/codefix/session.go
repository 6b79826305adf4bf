package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"codefix/internal/config"
	"codefix/internal/driver"
	"codefix/internal/prof"
)

// session is the per-command runtime: tracer, profiles and configuration.
type session struct {
	cfg     *config.Config
	baseDir string
	color   bool
	quiet   bool
	timings bool
	jobs    int
	cleanup []func()
}

// startSession sets up tracing and profiling, resolves colour and loads
// the configuration nearest to target. close must be deferred.
func startSession(cmd *cobra.Command, target string) (*session, error) {
	s := &session{}
	ok := false
	defer func() {
		if !ok {
			s.close()
		}
	}()

	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanup = append(s.cleanup, stopTrace)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanup = append(s.cleanup, stopProf)

	flags := cmd.Root().PersistentFlags()
	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	if s.color, err = useColor(colorMode, os.Stdout); err != nil {
		return nil, err
	}
	color.NoColor = !s.color
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, err
	}
	if s.jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative")
	}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if s.baseDir, err = baseDirFor(target); err != nil {
		return nil, err
	}
	if configPath != "" {
		s.cfg, err = config.Load(configPath)
	} else {
		s.cfg, err = config.LoadNearest(s.baseDir)
	}
	if err != nil {
		return nil, err
	}
	if s.cfg.Path != "" {
		// exclude patterns are relative to the configuration file
		s.baseDir = filepath.Dir(s.cfg.Path)
	}
	ok = true
	return s, nil
}

func (s *session) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	s.cleanup = nil
}

func (s *session) driverOptions() driver.Options {
	return driver.Options{
		Config:  s.cfg,
		BaseDir: s.baseDir,
		Jobs:    s.jobs,
		Timings: s.timings,
	}
}

// printNotices writes configuration warnings to stderr.
func (s *session) printNotices(notices []driver.Notice) {
	if s.quiet {
		return
	}
	for _, n := range notices {
		fmt.Fprintln(os.Stderr, n.String())
	}
}

// baseDirFor returns the absolute directory a target lives in.
func baseDirFor(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return nil, fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return nil, fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("exectrace"); err != nil {
		return nil, fmt.Errorf("failed to get exectrace flag: %w", err)
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	sess, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := sess.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
