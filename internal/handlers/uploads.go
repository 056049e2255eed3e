package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/listing"
)

// savePendingImage stages one uploaded photo on local disk as a pending
// asset. Pending files only live for the current session; they become
// durable on the backend after a successful submission.
func savePendingImage(file *multipart.FileHeader, pendingDir string) (listing.Asset, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return listing.Asset{}, fmt.Errorf("image file extension is required")
	}
	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return listing.Asset{}, fmt.Errorf("unsupported image type: %s", extension)
	}
	const maxImageSize = 5 << 20
	if file.Size > maxImageSize {
		return listing.Asset{}, fmt.Errorf("image file too large (max 5MB)")
	}

	filename := uuid.New().String() + extension

	if err := os.MkdirAll(pendingDir, 0o755); err != nil {
		log.Printf("[UPLOAD] savePendingImage: failed to create directory %s: %v", pendingDir, err)
		return listing.Asset{}, err
	}

	fullPath := filepath.Join(pendingDir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] savePendingImage: failed to create file %s: %v", fullPath, err)
		return listing.Asset{}, err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] savePendingImage: failed to open upload %s: %v", file.Filename, err)
		return listing.Asset{}, err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] savePendingImage: failed to save file %s: %v", fullPath, err)
		return listing.Asset{}, err
	}

	return listing.Asset{
		Ref:  "pending/" + filename,
		Name: file.Filename,
		Path: fullPath,
	}, nil
}

// safeDeletePending removes a staged file, refusing anything outside the
// pending directory.
func safeDeletePending(fullPath, pendingDir string) error {
	trimmed := strings.TrimSpace(fullPath)
	if trimmed == "" {
		return nil
	}

	cleanBase := filepath.Clean(pendingDir)
	cleanTarget := filepath.Clean(trimmed)
	if cleanTarget == cleanBase || !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside pending dir: %s", fullPath)
	}
	if path.Clean("/"+filepath.ToSlash(cleanTarget)) == "/" {
		return fmt.Errorf("refusing to delete root")
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
