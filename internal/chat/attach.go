package chat

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps attachments.
const MaxImageBytes = 4 << 20

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// LoadImage reads a local image and returns it as a base64 data URL.
func LoadImage(path string) (string, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return "", fmt.Errorf("usage: /attach <path to image>")
	}

	mediaType, ok := imageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q (use png, jpeg, gif or webp)", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("attach image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("attach image: %s is a directory", path)
	}
	if info.Size() > MaxImageBytes {
		return "", fmt.Errorf("image is %d KiB, the limit is %d KiB", info.Size()>>10, MaxImageBytes>>10)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("attach image: %w", err)
	}

	// Trust the bytes over the extension where the sniffer knows the format.
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		mediaType = sniffed
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
