package commands

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"productshot/config"
	"productshot/internal/logo"

	"github.com/spf13/cobra"
)

var uploadLogoCmd = &cobra.Command{
	Use:   "upload-logo <file>",
	Short: "Upload a logo for image overlays",
	Long: `Upload a PNG, JPG or SVG logo (at most 2MB) and print the stored file
name. Pass that name to the service as an image logo.`,
	Args: cobra.ExactArgs(1),
	RunE: runUploadLogo,
}

func init() {
	rootCmd.AddCommand(uploadLogoCmd)
}

func runUploadLogo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	filename, err := uploadLogoFile(commandContext(cmd), cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(outputOf(cmd), filename)
	return nil
}

func uploadLogoFile(ctx context.Context, cfg config.Config, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open logo: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat logo: %w", err)
	}

	contentType, err := detectContentType(f, path)
	if err != nil {
		return "", err
	}

	return logo.NewUploader(cfg.Generation, nil).Upload(ctx, logo.File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Body:        f,
	})
}

// detectContentType trusts the extension first and sniffs the content
// otherwise. f is rewound afterwards.
func detectContentType(f *os.File, path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct, nil
	}

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to rewind logo: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}
