package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signintech/gopdf"

	"github.com/everkeep/backend/internal/domain"
)

const (
	pageMargin = 40.0
	lineHeight = 18.0
)

type Generator struct {
	fontName string
	fontPath string
}

// NewGenerator locates a usable TTF font once; Generate starts a fresh
// document per call so the generator is safe to share.
func NewGenerator() (*Generator, error) {
	wd, _ := os.Getwd()

	fontPaths := []string{
		filepath.Join(wd, "fonts", "DejaVuSans.ttf"),
		"./fonts/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	}

	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			return &Generator{fontName: "dejavu", fontPath: path}, nil
		}
	}

	return nil, errors.New("no usable ttf font found")
}

// Generate renders a will together with its assets and contacts into a
// printable summary document.
func (g *Generator) Generate(will *domain.Will, owner *domain.User, assets []domain.Asset, contacts []domain.Contact) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		PageSize: *gopdf.PageSizeA4,
		Unit:     gopdf.Unit_PT,
	})

	if err := pdf.AddTTFFont(g.fontName, g.fontPath); err != nil {
		return nil, fmt.Errorf("add ttf font failed: %w", err)
	}

	pdf.AddPage()
	y := pageMargin

	writeLine := func(size float64, text string) error {
		if err := pdf.SetFont(g.fontName, "", size); err != nil {
			return fmt.Errorf("set font failed: %w", err)
		}
		pdf.SetXY(pageMargin, y)
		if err := pdf.Cell(nil, text); err != nil {
			return fmt.Errorf("write cell failed: %w", err)
		}
		y += lineHeight
		if y > gopdf.PageSizeA4.H-pageMargin {
			pdf.AddPage()
			y = pageMargin
		}
		return nil
	}

	if err := writeLine(20, will.Title); err != nil {
		return nil, err
	}
	if err := writeLine(11, fmt.Sprintf("Testator: %s <%s>", owner.FullName, owner.Email)); err != nil {
		return nil, err
	}
	if err := writeLine(11, fmt.Sprintf("Status: %s    Generated: %s", will.Status, time.Now().Format("2006-01-02"))); err != nil {
		return nil, err
	}
	y += lineHeight

	if will.Body != "" {
		if err := writeLine(12, will.Body); err != nil {
			return nil, err
		}
		y += lineHeight
	}

	if len(assets) > 0 {
		if err := writeLine(14, "Assets"); err != nil {
			return nil, err
		}
		for _, a := range assets {
			if err := writeLine(11, fmt.Sprintf("- [%s] %s: %s", a.Kind, a.Name, a.Instructions)); err != nil {
				return nil, err
			}
		}
		y += lineHeight
	}

	if len(contacts) > 0 {
		if err := writeLine(14, "Beneficiaries & executors"); err != nil {
			return nil, err
		}
		for _, c := range contacts {
			if err := writeLine(11, fmt.Sprintf("- %s (%s, %s) <%s>", c.FullName, c.Role, c.Status, c.Email)); err != nil {
				return nil, err
			}
		}
	}

	data := pdf.GetBytesPdf()

	return data, nil
}
