package captcha

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"chat-captcha/src/pkg/ocr"
)

/*
loadCacheFile reads the persisted fingerprint -> text mapping.

A missing file yields an empty map and no error. Entries whose text no longer
passes validation are dropped.
*/
func loadCacheFile(cachePath string) (entries map[string]string, e *xerr.Error) {
	entries = map[string]string{}

	fileBytes, readErr := os.ReadFile(cachePath)
	if errors.Is(readErr, fs.ErrNotExist) {
		return entries, nil
	}
	if readErr != nil {
		e = xerr.NewError(readErr, "read captcha cache file", cachePath)
		return entries, e
	}

	var stored map[string]string
	parseErr := json.Unmarshal(fileBytes, &stored)
	if parseErr != nil {
		e = xerr.NewError(parseErr, "parse captcha cache file", cachePath)
		return entries, e
	}

	for fingerprint, text := range stored {
		if ocr.ValidText(text) {
			entries[fingerprint] = text
		}
	}

	tl.Log(tl.Info1, palette.Green, "Loaded '%s' cached captcha solutions from '%s'", fmt.Sprintf("%d", len(entries)), cachePath)

	return entries, nil
}

/*
writeCacheFile replaces the cache file with entries.

The JSON goes to a temporary file in the same directory which is then renamed
over cachePath, so readers see either the previous or the new mapping.
*/
func writeCacheFile(cachePath string, entries map[string]string) (e *xerr.Error) {
	jsonBytes, marshalErr := json.Marshal(entries)
	if marshalErr != nil {
		e = xerr.NewError(marshalErr, "marshal captcha cache", cachePath)
		return e
	}

	dir := filepath.Dir(cachePath)
	mkdirErr := os.MkdirAll(dir, 0o755)
	if mkdirErr != nil {
		e = xerr.NewError(mkdirErr, "create captcha cache directory", dir)
		return e
	}

	tmp, createErr := os.CreateTemp(dir, ".captcha-cache-*")
	if createErr != nil {
		e = xerr.NewError(createErr, "create temporary cache file", dir)
		return e
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	chmodErr := tmp.Chmod(0o644)
	if chmodErr != nil {
		e = xerr.NewError(chmodErr, "chmod temporary cache file", tmpName)
		return e
	}
	_, writeErr := tmp.Write(jsonBytes)
	if writeErr != nil {
		e = xerr.NewError(writeErr, "write temporary cache file", tmpName)
		return e
	}
	closeErr := tmp.Close()
	if closeErr != nil {
		e = xerr.NewError(closeErr, "close temporary cache file", tmpName)
		return e
	}

	renameErr := os.Rename(tmpName, cachePath)
	if renameErr != nil {
		e = xerr.NewError(renameErr, "replace captcha cache file", cachePath)
		return e
	}

	tl.Log(tl.Info1, palette.Green, "Flushed '%s' cached captcha solutions to '%s'", fmt.Sprintf("%d", len(entries)), cachePath)

	return e
}
