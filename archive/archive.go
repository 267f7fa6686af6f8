// Package archive translates every HTML and XML file inside a gzip tarball,
// typically an exported course, and repacks the result.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/doclai/logger"
)

// DefaultOwner is used when the uploaded archive carries no owner names.
var DefaultOwner = Owner{User: "app", Group: "app"}

const (
	fileMode = 0o755
	dirMode  = fileMode | 0o111
)

// Owner is the user and group name written into every repacked entry.
type Owner struct {
	User  string
	Group string
}

// ErrUnsafePath is returned for entries that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extract unpacks a gzip tarball into dest and returns the owner of its first
// entry. Symlinks and special files are skipped.
func Extract(r io.Reader, dest string) (Owner, error) {
	owner := DefaultOwner

	gz, err := gzip.NewReader(r)
	if err != nil {
		return owner, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return owner, err
	}

	tr := tar.NewReader(gz)
	for first := true; ; first = false {
		hdr, err := tr.Next()
		if err == io.EOF {
			return owner, nil
		}
		if err != nil {
			return owner, fmt.Errorf("reading archive: %w", err)
		}
		if first {
			if hdr.Uname != "" {
				owner.User = hdr.Uname
			}
			if hdr.Gname != "" {
				owner.Group = hdr.Gname
			}
		}

		target, err := safeJoin(root, hdr.Name)
		if err != nil {
			return owner, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode); err != nil {
				return owner, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return owner, err
			}
		default:
			logger.Debug("skipping %s (tar type %c)", hdr.Name, hdr.Typeflag)
		}
	}
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeFile(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode) // #nosec G304 - path checked by safeJoin
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil { // #nosec G110 - archives are operator-supplied
		f.Close()
		return err
	}
	return f.Close()
}

// Pack writes srcDir as a gzip tarball with paths relative to srcDir.
// Every entry is owned by owner; files get mode 0755 and directories the
// same mode with all execute bits set.
func Pack(w io.Writer, srcDir string, owner Owner) error {
	if owner.User == "" {
		owner.User = DefaultOwner.User
	}
	if owner.Group == "" {
		owner.Group = DefaultOwner.Group
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Uname = owner.User
		hdr.Gname = owner.Group
		if info.IsDir() {
			hdr.Name += "/"
			hdr.Mode = dirMode
			return tw.WriteHeader(hdr)
		}
		hdr.Mode = fileMode
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path) // #nosec G304 - walking our own staging directory
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("packing %s: %w", srcDir, err)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// OutputName names the translated archive after the upload:
// "<language>_<base>", where a base ending in "_tar.gz" or "_tar" gets a
// proper extension and a base with no tar or gz extension gets ".tar.gz".
func OutputName(upload, language string) string {
	base := filepath.Base(upload)
	switch {
	case strings.HasSuffix(base, ".tar.gz"):
	case strings.HasSuffix(base, "_tar.gz"):
		base = strings.TrimSuffix(base, "_tar.gz") + ".tar.gz"
	case strings.HasSuffix(base, "_tar"):
		base = strings.TrimSuffix(base, "_tar") + ".tar"
	case !strings.HasSuffix(base, ".tar") && !strings.HasSuffix(base, ".gz"):
		base += ".tar.gz"
	}
	return language + "_" + base
}
