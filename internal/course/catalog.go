package course

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a course definition. Files are listed
// relative to the YAML file's directory unless absolute.
type catalogFile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Files       []string `yaml:"files"`
}

// LoadCatalog reads every *.yaml / *.yml course definition under rootDir.
// Invalid files are skipped with a warning. Courses are returned sorted by ID.
func LoadCatalog(rootDir string) ([]Course, error) {
	if _, err := os.Stat(rootDir); err != nil {
		return nil, fmt.Errorf("stat catalog dir: %w", err)
	}

	byID := make(map[string]Course)
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		c, ok, err := loadCatalogFile(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, dup := byID[c.ID]; dup {
			slog.Warn("duplicate course id in catalog, keeping first", "id", c.ID, "path", path)
			return nil
		}
		byID[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	courses := make([]Course, 0, len(byID))
	for _, c := range byID {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })

	slog.Info("course catalog loaded", "courses", len(courses), "dir", rootDir)
	return courses, nil
}

func loadCatalogFile(path string) (Course, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Course{}, false, err
	}

	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		slog.Warn("skipping invalid course YAML", "path", path, "error", err)
		return Course{}, false, nil
	}
	if raw.ID == "" {
		return Course{}, false, nil
	}

	c := Course{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Files:       []PDFFile{},
	}
	base := filepath.Dir(path)
	for _, f := range raw.Files {
		if f == "" {
			continue
		}
		if !filepath.IsAbs(f) {
			f = filepath.Join(base, f)
		}
		c.AttachFile(f)
	}
	return c, true, nil
}

// Seed creates every course that is not already in the store and returns how
// many were created.
func Seed(store Store, courses []Course) (int, error) {
	created := 0
	for _, c := range courses {
		err := store.Create(c)
		if errors.Is(err, ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed course %s: %w", c.ID, err)
		}
		created++
	}
	return created, nil
}
