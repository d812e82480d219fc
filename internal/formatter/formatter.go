// package formatter renders recipes as CSV, Markdown, plain text, JSON and YAML
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/goccy/go-yaml"
)

// Format is an export format.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts a format name or a common alias (text, md, yml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

var csvHeaders = []string{"ID", "Name", "When", "Category", "Prep", "Cook", "Total", "Servings", "Calories", "Difficulty", "Cost", "Featured"}

// ExportToCSV converts recipes to CSV, one row per recipe, with times in minutes.
func ExportToCSV(recipes []models.Recipe) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range recipes {
		record := []string{
			r.ID,
			r.Name,
			r.WhenToEat,
			r.Category,
			strconv.Itoa(r.PrepTime),
			strconv.Itoa(r.CookTime),
			strconv.Itoa(r.Duration()),
			strconv.Itoa(r.Servings),
			strconv.Itoa(r.Calories),
			r.Difficulty,
			strconv.FormatFloat(r.Cost, 'f', -1, 64),
			strconv.FormatBool(r.IsFeatured),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a recipe card with an optional image reference.
func ExportToMarkdown(r models.Recipe, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![%s](%s)\n\n", r.Name, imageFilename)
	}

	if r.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", r.Description)
	}

	if r.WhenToEat != "" {
		fmt.Fprintf(&buf, "**When**: %s\n", r.WhenToEat)
	}
	fmt.Fprintf(&buf, "**Preparation**: %s\n", shared.FormatMinutes(r.PrepTime))
	fmt.Fprintf(&buf, "**Cooking**: %s\n", shared.FormatMinutes(r.CookTime))
	if r.Servings > 0 {
		fmt.Fprintf(&buf, "**Servings**: %d\n", r.Servings)
	}
	if r.Calories > 0 {
		fmt.Fprintf(&buf, "**Calories**: %d\n", r.Calories)
	}
	if r.Difficulty != "" {
		fmt.Fprintf(&buf, "**Difficulty**: %s\n", r.Difficulty)
	}
	buf.WriteString("\n")

	if len(r.Ingredients) > 0 {
		buf.WriteString("## Ingredients\n\n")
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&buf, "- %s\n", ing)
		}
		buf.WriteString("\n")
	}

	if r.Instructions != "" {
		buf.WriteString("## Instructions\n\n")
		fmt.Fprintf(&buf, "%s\n", strings.TrimSpace(r.Instructions))
	}

	if r.Disclaimer != "" {
		fmt.Fprintf(&buf, "\n> %s\n", r.Disclaimer)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a recipe as plain text.
func ExportToText(r models.Recipe) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Recipe: %s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(&buf, "Time: %s (prep %s, cook %s)\n", shared.FormatMinutes(r.Duration()),
		shared.FormatMinutes(r.PrepTime), shared.FormatMinutes(r.CookTime))
	fmt.Fprintf(&buf, "Ingredients: %d\n\n", len(r.Ingredients))

	for i, ing := range r.Ingredients {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, ing)
	}

	if r.Instructions != "" {
		fmt.Fprintf(&buf, "\n%s\n", strings.TrimSpace(r.Instructions))
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes v as indented JSON.
func ExportToJSON(v any) ([]byte, error) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}
	return data, nil
}

// ExportToYAML encodes v as YAML.
func ExportToYAML(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to generate YAML: %w", err)
	}
	return data, nil
}

// ExportRecipes renders a list of recipes in a single document.
func ExportRecipes(recipes []models.Recipe, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(recipes)
	case FormatYAML:
		return ExportToYAML(recipes)
	case FormatMarkdown, FormatText:
		var buf bytes.Buffer
		for i, r := range recipes {
			render := ExportToText
			if format == FormatMarkdown {
				render = func(r models.Recipe) ([]byte, error) { return ExportToMarkdown(r, "") }
			}
			data, err := render(r)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				buf.WriteString("\n---\n\n")
			}
			buf.Write(data)
		}
		return buf.Bytes(), nil
	default:
		return ExportToJSON(recipes)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Image     string
}

// WriteMarkdownExport exports a recipe to Markdown in a dedicated directory.
//
// Creates {dir}/README.md and, when image is non-nil, {dir}/image.jpg referenced from the card.
func WriteMarkdownExport(r models.Recipe, outputDir string, image []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = r.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var imageFilename string
	if len(image) > 0 {
		imagePath := filepath.Join(outputDir, "image.jpg")
		if err := os.WriteFile(imagePath, image, 0644); err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		imageFilename = "image.jpg"
		result.Image = imagePath
		result.Files = append(result.Files, imagePath)
	}

	mdData, err := ExportToMarkdown(r, imageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteRecipeExport writes one recipe under dir in the given format and returns the created files.
//
// Markdown gets its own {dir}/{id}/ directory; every other format writes {dir}/{id}.{ext}.
func WriteRecipeExport(r models.Recipe, format Format, dir string, image []byte) ([]string, error) {
	if format == FormatMarkdown {
		res, err := WriteMarkdownExport(r, filepath.Join(dir, r.ID), image)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatText:
		data, err = ExportToText(r)
	case FormatCSV:
		data, err = ExportToCSV([]models.Recipe{r})
	case FormatYAML:
		data, err = ExportToYAML(r)
	default:
		data, err = ExportToJSON(r)
	}
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s", r.ID, format.Ext()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return []string{path}, nil
}

// WriteManifest writes v as JSON to path.
func WriteManifest(v any, path string) error {
	data, err := ExportToJSON(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
