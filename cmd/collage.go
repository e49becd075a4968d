/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/spotify-insights/internal/catalog"
	"github.com/ademuri/spotify-insights/internal/collage"
)

type CollageConfig struct {
	DbPath      string
	User        string
	OutDir      string
	Playlist    string
	LayoutFile  string
	PrintLayout bool

	// LoadConcurrency bounds parallel cover downloads; 0 uses the default.
	LoadConcurrency int
}

var collageCmd = &cobra.Command{
	Use:   "collage",
	Short: "Renders album covers into a PNG collage",
	Long: `Places up to 16 distinct album covers from the top tracks (or a playlist) at
preset positions and writes spotify-collage.png. A YAML layout file mapping album
ids to top, left and rotation overrides the presets; --print_layout prints the
layout that was used in the same format.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		config := CollageConfig{
			DbPath:      viper.GetString("database"),
			User:        viper.GetString("user"),
			OutDir:      viper.GetString("out"),
			Playlist:    viper.GetString("playlist"),
			LayoutFile:  viper.GetString("layout"),
			PrintLayout: viper.GetBool("print_layout"),

			LoadConcurrency: viper.GetInt("load_concurrency"),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		loader := collage.NewHTTPLoader(15 * time.Second)
		err := makeCollage(ctx, os.Stdout, config, loader)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(collageCmd)

	var out, playlist, layout string
	var printLayout bool
	collageCmd.Flags().StringVarP(&out, "out", "o", ".", "Directory to write the collage to")
	viper.BindPFlag("out", collageCmd.Flags().Lookup("out"))
	collageCmd.Flags().StringVar(&playlist, "playlist", "", "Use covers from this playlist (id or name) instead of the top tracks")
	viper.BindPFlag("playlist", collageCmd.Flags().Lookup("playlist"))
	collageCmd.Flags().StringVar(&layout, "layout", "", "YAML file of cover positions")
	viper.BindPFlag("layout", collageCmd.Flags().Lookup("layout"))
	collageCmd.Flags().BoolVar(&printLayout, "print_layout", false, "Print the layout used as YAML")
	viper.BindPFlag("print_layout", collageCmd.Flags().Lookup("print_layout"))

	var loadConcurrency int
	collageCmd.Flags().IntVar(&loadConcurrency, "load_concurrency", 8, "Number of covers to download at once")
	viper.BindPFlag("load_concurrency", collageCmd.Flags().Lookup("load_concurrency"))
}

func makeCollage(ctx context.Context, out io.Writer, config CollageConfig, loader collage.ImageLoader) error {
	snap, err := loadSnapshot(config.DbPath, config.User)
	if err != nil {
		return err
	}
	tracks, err := collageTracks(snap, config.Playlist)
	if err != nil {
		return err
	}
	covers := collage.CoversFromTracks(tracks)
	if len(covers) == 0 {
		return fmt.Errorf("no album covers stored - run update first")
	}

	sink := collage.FileSink{Dir: config.OutDir}
	comp := collage.New(loader, sink,
		collage.WithLogger(log.With().Str("user", config.User).Logger()),
		collage.WithLoadConcurrency(config.LoadConcurrency))
	comp.InitializeLayout(covers)

	if config.LayoutFile != "" {
		layout, err := readLayout(config.LayoutFile)
		if err != nil {
			return err
		}
		if err := applyLayout(out, comp, layout); err != nil {
			return err
		}
	}

	result, err := comp.Export(ctx)
	if errors.Is(err, collage.ErrNothingToExport) {
		return fmt.Errorf("no covers placed")
	}
	if err != nil {
		return fmt.Errorf("exporting collage: %w", err)
	}

	fmt.Fprintf(out, "Wrote %s with %d covers\n", sink.Path(result.FileName), result.Drawn)
	if len(result.Omitted) > 0 {
		fmt.Fprintf(out, "Could not load %d covers: %v\n", len(result.Omitted), result.Omitted)
	}

	if config.PrintLayout {
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(comp.Layout()); err != nil {
			return fmt.Errorf("encoding layout: %w", err)
		}
		return encoder.Close()
	}
	return nil
}

func collageTracks(snap catalog.Snapshot, playlist string) ([]catalog.Track, error) {
	if playlist == "" {
		return snap.TopTracks, nil
	}
	p, ok := snap.Playlist(playlist)
	if !ok {
		return nil, fmt.Errorf("no stored playlist matches %q", playlist)
	}
	return snap.PlaylistTracks[p.ID], nil
}

func readLayout(path string) (collage.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	var layout collage.Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	return layout, nil
}

// applyLayout moves covers named in layout. Albums that are not in the
// collage are skipped with a warning.
func applyLayout(out io.Writer, comp *collage.Compositor, layout collage.Layout) error {
	ids := make([]string, 0, len(layout))
	for id := range layout {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		err := comp.Move(id, layout[id])
		if errors.Is(err, collage.ErrUnknownCover) {
			fmt.Fprintf(out, "Layout names album %q, which is not in the collage\n", id)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
