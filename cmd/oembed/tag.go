package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oembed/internal/lookup"
	"oembed/internal/tagger"
)

var noArtwork bool

var tagCmd = &cobra.Command{
	Use:   "tag <audio-file> <url>",
	Short: "Write a URL's oEmbed metadata into an audio file",
	Long: `Look up url and write its title, author and provider into the tags of
audio-file. The source URL is stored as a comment. The thumbnail, if any, is
embedded as cover art.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, target := args[0], args[1]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot tag %s: %w", path, err)
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		res := a.svc.Lookup(a.sh.Context(), target)
		switch res.Status {
		case lookup.StatusUnsupported:
			return &exitError{code: exitUnsupported, msg: "no provider for " + target}
		case lookup.StatusFailed:
			return fmt.Errorf("%s lookup failed: %w", res.Provider, res.Err)
		}

		info := tagger.InfoFromResponse(res.Response, target)
		if err := tagger.WriteTags(path, info); err != nil {
			return err
		}
		a.log.Info("Tagged %s with %q by %q", path, info.Title, info.Artist)

		if noArtwork {
			return nil
		}
		data, err := tagger.FetchArtwork(a.sh.Context(), a.client, res.Response)
		if err != nil {
			a.log.Warn("Skipping artwork: %v", err)
			return nil
		}
		if data == nil {
			a.log.Debug("%s sent no thumbnail", res.Provider)
			return nil
		}
		if err := tagger.WriteArtwork(path, data); err != nil {
			return err
		}
		a.log.Info("Embedded artwork (%d bytes)", len(data))
		return nil
	},
}

func init() {
	tagCmd.Flags().BoolVar(&noArtwork, "no-artwork", false, "do not embed the thumbnail")
	rootCmd.AddCommand(tagCmd)
}
