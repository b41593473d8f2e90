/*
Package cli provides helpers shared by the petab commands: output
formatting, exit codes, progress bars and signal handling.

Results are rendered as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatCSV)
	if err := formatter.FormatTo(os.Stdout, samples); err != nil {
		return err
	}

Text output uses the result's WriteText method when it has one; CSV output
requires the result to implement Tabular.

Errors map to exit codes with ExitCode: lint findings exit 1, usage
errors exit 2, everything else exits 3.
*/
package cli
