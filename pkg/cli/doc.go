/*
Package cli provides command-line helpers for the underwriter command.

Output Formatting:

Decision results can be written as an aligned text table, as JSON or as CSV:

	format, err := cli.ParseFormat("csv")
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result, nil); err != nil {
		return err
	}

Progress Reporting:

The progress reporter plugs into the engine's progress callback:

	progress := cli.NewProgressReporter(os.Stderr)
	eng, err := engine.New(cfg, engine.WithProgress(cli.EngineProgress(progress)))

Signal Handling:

For graceful cancellation on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps command errors to process exit codes: 2 for invalid flags or
configuration, 3 for rejected inputs, 1 for anything else.
*/
package cli
