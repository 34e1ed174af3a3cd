package main

import (
	"os"

	"oembed/internal/lookup"
	"oembed/internal/progress"
)

func runLookups(a *app, urls []string) error {
	ctx := a.sh.Context()

	var bar *progress.Bar
	if len(urls) > 1 && !a.cfg.Verbose {
		bar = progress.New(len(urls), os.Stderr)
		a.log.SetQuiet(true)
	}

	results := make([]lookup.Result, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		res := a.svc.Lookup(ctx, u)
		results = append(results, res)
		if bar != nil {
			bar.Increment(string(res.Status))
		}
	}

	if bar != nil {
		bar.Finish()
		a.log.SetQuiet(false)
	}

	if a.cfg.Output == "json" {
		if err := printJSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		printText(os.Stdout, results)
	}

	if ctx.Err() != nil {
		return &exitError{code: exitFailure, msg: "interrupted"}
	}
	return exitStatus(results)
}
