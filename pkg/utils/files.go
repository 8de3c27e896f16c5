package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrEmptyArchive is returned by LoadFile for archives containing no
// files.
var ErrEmptyArchive = errors.New("archive contains no files")

// LoadFile loads the given ROM file and performs decompression if
// necessary. Archives (.zip, .gz, .7z) yield their first file.
func LoadFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var decoder io.Reader
	switch filepath.Ext(filename) {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		var zipReader *zip.Reader
		zipReader, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}

		if len(zipReader.File) == 0 {
			return nil, ErrEmptyArchive
		}
		// read the first file in the archive
		decoder, err = zipReader.File[0].Open()
	case ".7z":
		var r *sevenzip.Reader
		r, err = sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}

		if len(r.File) == 0 {
			return nil, ErrEmptyArchive
		}
		decoder, err = r.File[0].Open()
	default:
		// raw ROM, return the data as is
		return data, nil
	}

	if err != nil {
		return nil, err
	}

	return io.ReadAll(decoder)
}

// FindROMs walks dir recursively and returns the paths of all .ch8
// files, sorted by name.
func FindROMs(dir string) ([]string, error) {
	var roms []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".ch8") {
			roms = append(roms, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(roms)
	return roms, nil
}
