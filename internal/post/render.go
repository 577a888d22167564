package post

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML block at the top of a post
type FrontMatter struct {
	Layout         string   `yaml:"layout" json:"layout"`
	Title          string   `yaml:"title" json:"title"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Date           string   `yaml:"date" json:"date"`
	Categories     []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	Tags           []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Author         string   `yaml:"author,omitempty" json:"author,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Image          string   `yaml:"image,omitempty" json:"image,omitempty"`
	ImageAlt       string   `yaml:"image_alt,omitempty" json:"image_alt,omitempty"`
	ImageCredit    string   `yaml:"image_credit,omitempty" json:"image_credit,omitempty"`
	ImageCreditURL string   `yaml:"image_credit_url,omitempty" json:"image_credit_url,omitempty"`
	ImageGenerated bool     `yaml:"image_generated,omitempty" json:"image_generated,omitempty"`
}

// FrontMatter returns the metadata block for d
func (d Draft) FrontMatter() FrontMatter {
	fm := FrontMatter{
		Layout:      d.Layout,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date.Format(FrontMatterDateLayout),
		Categories:  d.Categories,
		Tags:        d.Tags,
		Author:      d.Author,
		Keywords:    d.Keywords,
	}
	if d.Image != nil {
		fm.Image = d.Image.Path
		fm.ImageAlt = d.Image.Alt
		fm.ImageCredit = d.Image.Credit
		fm.ImageCreditURL = d.Image.CreditURL
		fm.ImageGenerated = d.Image.Generated
	}
	return fm
}

// Render produces the complete Markdown file for d
func Render(d Draft) ([]byte, error) {
	fm, err := yaml.Marshal(d.FrontMatter())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal front matter: %w", err)
	}

	body, err := Body(d)
	if err != nil {
		return nil, err
	}

	return []byte(fmt.Sprintf("---\n%s---\n\n%s", fm, body)), nil
}

// Parse splits a post into its front matter and Markdown body
func Parse(content []byte) (FrontMatter, string, error) {
	reader := bufio.NewReader(bytes.NewReader(content))

	firstLine, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(firstLine) != "---" {
		return FrontMatter{}, "", fmt.Errorf("invalid post format: missing front matter")
	}

	var header strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) == "---" {
			break
		}
		if err != nil {
			return FrontMatter{}, "", fmt.Errorf("unterminated front matter")
		}
		header.WriteString(line)
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(header.String()), &fm); err != nil {
		return FrontMatter{}, "", fmt.Errorf("invalid front matter: %w", err)
	}

	var body strings.Builder
	if _, err := reader.WriteTo(&body); err != nil {
		return FrontMatter{}, "", err
	}

	return fm, strings.TrimLeft(body.String(), "\n"), nil
}
