package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"productshot/internal/catalog"
	"productshot/internal/gallery"
	"productshot/internal/generation"
	"productshot/internal/mediator"
	"productshot/internal/orchestrator"
	"productshot/internal/queue"

	"github.com/spf13/cobra"
)

var (
	genCategory     string
	genStyle        string
	genAngle        string
	genColor        string
	genImages       int
	genResolution   string
	genLogoText     string
	genLogoFile     string
	genLogoPosition string
	genLogoSize     int
	genLogoOpacity  int
	genDownload     string
	genThumbnails   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate product images",
	Long: `Generate product images for a description.

Examples:
  productshot generate "A red ceramic mug" --category home-decor --images 2
  productshot generate "Leather boots" --style urban --logo-text ACME
  productshot generate "Desk lamp" --download ./shots --thumbnails`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringVar(&genCategory, "category", catalog.DefaultCategory, "Product category")
	f.StringVar(&genStyle, "style", catalog.DefaultStyle, "Visual style")
	f.StringVar(&genAngle, "angle", catalog.DefaultAngle, "Camera angle")
	f.StringVar(&genColor, "color", "", "Dominant product color")
	f.IntVar(&genImages, "images", catalog.DefaultImages, "Number of images (1-4)")
	f.StringVar(&genResolution, "resolution", catalog.DefaultResolution, "Image resolution")
	f.StringVar(&genLogoText, "logo-text", "", "Text watermark to overlay")
	f.StringVar(&genLogoFile, "logo-file", "", "Logo image to upload and overlay")
	f.StringVar(&genLogoPosition, "logo-position", "bottom-right", "Logo position")
	f.IntVar(&genLogoSize, "logo-size", 20, "Logo size in percent of the image")
	f.IntVar(&genLogoOpacity, "logo-opacity", 80, "Logo opacity in percent")
	f.StringVar(&genDownload, "download", "", "Save the generated images into this directory")
	f.BoolVar(&genThumbnails, "thumbnails", false, "Also write thumbnails when downloading")
}

type savedOutput struct {
	URL       string `json:"url"`
	Path      string `json:"path,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Error     string `json:"error,omitempty"`
}

type generateOutput struct {
	ID       string               `json:"id"`
	Images   []string             `json:"images"`
	Metadata *generation.Metadata `json:"metadata,omitempty"`
	Saved    []savedOutput        `json:"saved,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	out := outputOf(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	gen, closeGen, err := mediator.NewGenerator(cfg)
	if err != nil {
		return err
	}
	defer closeGen()

	req := generation.NewRequest(strings.Join(args, " "))
	req.Category = genCategory
	req.Style = genStyle
	req.Angle = genAngle
	req.Color = genColor
	req.Settings = &generation.Settings{NumImages: genImages, Resolution: genResolution}

	switch {
	case genLogoFile != "":
		filename, err := uploadLogoFile(ctx, cfg, genLogoFile)
		if err != nil {
			return err
		}
		req.Logo = newLogo(generation.LogoImage, filename)
	case genLogoText != "":
		req.Logo = newLogo(generation.LogoText, genLogoText)
	}

	orch := orchestrator.New(gen,
		orchestrator.WithQueue(queue.New(cfg.Queue.Concurrency)),
		orchestrator.WithBaseURL(cfg.Generation.BaseUrl),
	)
	res, err := orch.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("%s [%s]: %w", generation.Message(err), generation.CodeOf(err), err)
	}

	result := generateOutput{ID: res.ID, Images: res.Images, Metadata: res.Metadata}
	if result.Images == nil {
		result.Images = []string{}
	}

	if genDownload != "" && len(res.Images) > 0 {
		gcfg := cfg.Gallery
		gcfg.Thumbnails = gcfg.Thumbnails || genThumbnails
		saved, err := gallery.NewDownloader(gcfg, nil).DownloadAll(ctx, res.Images, genDownload)
		if err != nil {
			return fmt.Errorf("failed to save images: %w", err)
		}
		for _, s := range saved {
			so := savedOutput{URL: s.URL, Path: s.Path, Thumbnail: s.Thumbnail}
			if s.Err != nil {
				so.Error = s.Err.Error()
			}
			result.Saved = append(result.Saved, so)
		}
	}

	if isTerminal(out) {
		printGenerate(out, result)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func newLogo(kind generation.LogoType, content string) *generation.Logo {
	return &generation.Logo{
		Type:     kind,
		Content:  content,
		Position: genLogoPosition,
		Size:     genLogoSize,
		Opacity:  genLogoOpacity,
	}
}

func printGenerate(w io.Writer, r generateOutput) {
	if len(r.Images) == 0 {
		fmt.Fprintln(w, catalog.TextNoImages)
		return
	}
	fmt.Fprintf(w, "Generated %d image(s)\n", len(r.Images))
	if r.Metadata != nil && r.Metadata.Prompt != "" {
		fmt.Fprintf(w, "Prompt: %s\n", r.Metadata.Prompt)
	}
	for i, img := range r.Images {
		fmt.Fprintf(w, "  %d. %s\n", i+1, img)
	}
	for _, s := range r.Saved {
		if s.Error != "" {
			fmt.Fprintf(w, "  failed %s: %s\n", s.URL, s.Error)
			continue
		}
		fmt.Fprintf(w, "  saved %s\n", s.Path)
	}
}
