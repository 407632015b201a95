package cli

import (
	"context"
	"errors"
	"io"
	"time"
)

// RunWatch extracts once, then again after every change of the workflow
// source, until ctx is done. Failed reloads keep the previous graph and
// wait for the next change.
func RunWatch(ctx context.Context, rt *Runtime, opts ExtractOptions, w io.Writer) error {
	changes, err := rt.Extractor.Watch(ctx)
	if err != nil {
		return err
	}

	printSystemMessage(w, "Watching '%s'.", rt.Extractor.Name())
	if err := RunExtract(ctx, rt, opts, w); err != nil {
		rt.Logger.Error("extraction failed", "err", err)
		printSystemMessage(w, "Extraction failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			printSystemMessage(w, "Watcher stopped.")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			started := time.Now()
			printSystemMessage(w, "Change detected in '%s'.", rt.Extractor.Name())
			if err := RunExtract(ctx, rt, opts, w); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				rt.Logger.Error("extraction failed", "err", err)
				printSystemMessage(w, "Extraction failed: %v", err)
				continue
			}
			rt.Logger.Debug("re-extracted", "elapsed", time.Since(started))
			printSystemMessage(w, "Waiting for changes...")
		}
	}
}
