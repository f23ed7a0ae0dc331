// Package twbfile handles Tableau workbook (.twb) files as raw text:
// loading, timestamped backups, output naming, XML attribute escaping,
// and well-formedness validation.
//
// A workbook is never parsed into a document tree for editing. Tableau
// is picky about quoting and whitespace, so every untouched byte must
// survive a translation run unchanged; all edits happen through anchored
// text substitution (see the rewrite package). The XML parser is used
// only as a read-only well-formedness check.
package twbfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/twbloc/twbloc/langmeta"
)

// EscapeAttr escapes the five XML-reserved characters for embedding a
// string in a single-quoted attribute or text node. The ampersand is
// escaped first so entities produced for the other four characters are
// not double-encoded.
func EscapeAttr(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, "'", "&apos;")
	text = strings.ReplaceAll(text, "\"", "&quot;")
	return text
}

// Validate runs a full well-formedness parse over the workbook text.
// It returns a validity flag and a diagnostic message: the parse error
// detail on failure, a confirmation otherwise. Validation never mutates
// anything and is safe to call on arbitrary text.
func Validate(content string) (bool, string) {
	dec := xml.NewDecoder(strings.NewReader(content))
	depth := 0
	roots := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if roots == 0 {
					return false, "XML parse error: no root element"
				}
				return true, "XML is well-formed"
			}
			return false, fmt.Sprintf("XML parse error: %v", err)
		}
		// The token scanner alone tolerates sibling roots and stray
		// text around the document element; a document must have
		// exactly one root and nothing but whitespace outside it.
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if roots > 0 {
					return false, "XML parse error: multiple root elements"
				}
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				return false, "XML parse error: text outside the root element"
			}
		}
	}
}

// Load reads the whole workbook into memory as UTF-8 text.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading workbook: %w", err)
	}
	return string(data), nil
}

// Write saves workbook text to path.
func Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// BackupPathAt returns the backup file name for path at the given time:
// the extension is replaced by "_backup_YYYYMMDD_HHMMSS" plus the
// original extension.
func BackupPathAt(path string, at time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_backup_%s%s", base, at.Format("20060102_150405"), ext)
}

// Backup copies the file at path to a timestamped sibling and returns
// the backup path. Called before any mutation; the backup is the
// recovery mechanism of last resort.
func Backup(path string) (string, error) {
	content, err := Load(path)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	backupPath := BackupPathAt(path, time.Now())
	if err := os.WriteFile(backupPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	return backupPath, nil
}

// OutputPath derives the default output file name for a target language:
// the base name plus "_" plus the language's file-naming code, keeping
// the original extension.
func OutputPath(inputPath, language string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	return fmt.Sprintf("%s_%s%s", base, langmeta.Code(language), ext)
}
