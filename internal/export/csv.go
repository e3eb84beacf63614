package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Charile333/TGBOT/internal/fsstore"
	"github.com/Charile333/TGBOT/internal/leakradar"
)

// Header is the column order of every export file.
var Header = []string{"username", "password", "url", "is_email", "unlocked", "password_strength", "added_at"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter materializes records into BOM-prefixed CSV files so spreadsheet
// tools pick the right encoding.
type CSVWriter struct {
	Dir   string
	Now   func() time.Time
	NewID func() string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir}
}

// Write stores records under a unique name derived from prefix and returns
// the file path.
func (w *CSVWriter) Write(records []leakradar.Record, prefix string) (string, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Header); err != nil {
		return "", err
	}
	for _, r := range records {
		row := []string{
			r.Username,
			r.Password,
			r.URL,
			strconv.FormatBool(r.IsEmail),
			strconv.FormatBool(r.Unlocked),
			string(r.PasswordStrength),
			string(r.AddedAt),
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, w.fileName(prefix))
	if err := fsstore.WriteFileAtomic(path, buf.Bytes(), fsstore.FileOptions{}); err != nil {
		return "", err
	}
	return path, nil
}

func (w *CSVWriter) fileName(prefix string) string {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	var id string
	if w.NewID != nil {
		id = w.NewID()
	} else {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return fmt.Sprintf("%s_%d_%s.csv", SafeName(prefix), now().Unix(), id)
}

// SafeName keeps letters, digits and ._@- and replaces everything else, so
// user supplied subjects cannot escape the export directory.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '@' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "export"
	}
	if len(out) > 80 {
		out = out[:80]
	}
	return out
}
