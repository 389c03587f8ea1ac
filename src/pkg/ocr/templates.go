package ocr

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Alphanumerics is the label set of the fallback template table.
const Alphanumerics = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	blankTemplateWidth  = 20
	blankTemplateHeight = 30
)

// tl.Log hands every argument to the format as a colorized string
const (
	blankTemplatesNotice  = "Template directory '%s' has %s, using '%s' blank templates"
	loadedTemplatesNotice = "Loaded '%s' character templates from '%s'"
)

/*
TemplateStore is the read-only table of labeled reference characters.

Templates are PNG files named after their single-character label (A.png,
7.png). The table is loaded on first use and never changes afterwards.
*/
type TemplateStore struct {
	dir  string // on-disk directory, created when missing; empty for fs-backed stores
	fsys fs.FS
	root string

	once      sync.Once
	templates map[rune]*image.Gray
	labels    []rune
}

// NewTemplateStore reads templates from dir on the local filesystem.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir, fsys: os.DirFS(dir), root: "."}
}

// NewTemplateStoreFS reads templates from root inside fsys. The directory is
// never created.
func NewTemplateStoreFS(fsys fs.FS, root string) *TemplateStore {
	return &TemplateStore{fsys: fsys, root: root}
}

/*
EnsureLoaded loads the table if this store has not done so yet.

A missing on-disk directory is created empty. Whenever no usable template is
found, every alphanumeric character gets a blank (all black) template so the
recognizer always has candidates; blank templates never clear the acceptance
threshold against a light crop, so recognition stays on the fallback rules
until real templates are curated.
*/
func (s *TemplateStore) EnsureLoaded() {
	s.once.Do(func() {
		templates := map[rune]*image.Gray{}

		if s.dir != "" {
			if _, statErr := os.Stat(s.dir); errors.Is(statErr, fs.ErrNotExist) {
				e := ensureOutputDirectory(s.dir)
				if e != nil {
					tl.Log(tl.Warning, palette.Yellow, "Unable to create template directory '%s': '%s'", s.dir, e)
				}
			}
		}

		loaded, e := loadTemplates(s.fsys, s.root)
		if e != nil {
			tl.Log(tl.Info, palette.Purple, "No templates read from '%s': '%s'", s.describe(), e)
		}
		for label, template := range loaded {
			templates[label] = template
		}

		if len(templates) == 0 {
			for _, label := range Alphanumerics {
				templates[label] = image.NewGray(image.Rect(0, 0, blankTemplateWidth, blankTemplateHeight))
			}
			tl.Log(tl.Notice, palette.PurpleBold, blankTemplatesNotice, s.describe(), "no usable templates", fmt.Sprintf("%d", len(templates)))
		} else {
			tl.Log(tl.Info1, palette.Green, loadedTemplatesNotice, fmt.Sprintf("%d", len(templates)), s.describe())
		}

		labels := make([]rune, 0, len(templates))
		for label := range templates {
			labels = append(labels, label)
		}
		slices.Sort(labels)

		s.templates = templates
		s.labels = labels
	})
}

// Labels returns the template labels in ascending order.
func (s *TemplateStore) Labels() []rune {
	s.EnsureLoaded()
	return slices.Clone(s.labels)
}

// Template returns the reference image for label.
func (s *TemplateStore) Template(label rune) (template *image.Gray, ok bool) {
	s.EnsureLoaded()
	template, ok = s.templates[label]
	return template, ok
}

// Len is the number of templates in the table.
func (s *TemplateStore) Len() int {
	s.EnsureLoaded()
	return len(s.templates)
}

func (s *TemplateStore) describe() string {
	if s.dir != "" {
		return s.dir
	}
	return s.root
}

func loadTemplates(fsys fs.FS, root string) (templates map[rune]*image.Gray, e *xerr.Error) {
	entries, readErr := fs.ReadDir(fsys, root)
	if readErr != nil {
		e = xerr.NewError(readErr, "read template directory", root)
		return nil, e
	}

	templates = make(map[rune]*image.Gray, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), ".png") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		if utf8.RuneCountInString(stem) != 1 {
			continue
		}
		label, _ := utf8.DecodeRuneInString(stem)
		if !isAlphanumeric(label) {
			continue
		}

		template, decodeErr := decodeTemplate(fsys, path.Join(root, entry.Name()))
		if decodeErr != nil {
			tl.Log(tl.Warning, palette.Yellow, "Skipping unreadable template '%s': '%s'", entry.Name(), decodeErr)
			continue
		}
		templates[label] = template
	}

	return templates, nil
}

func decodeTemplate(fsys fs.FS, name string) (*image.Gray, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, err
	}
	return toGray(imaging.Grayscale(img)), nil
}
