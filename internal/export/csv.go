// Package export builds the employer CSV download and keeps the generated
// files on local disk or R2.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

// EscapeCell quotes s iff it contains a comma, a double quote, CR or LF.
// Quotes inside a quoted cell are doubled.
func EscapeCell(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

type Writer struct {
	w    *bufio.Writer
	rows int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (cw *Writer) Write(cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if err := cw.w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := cw.w.WriteString(EscapeCell(c)); err != nil {
			return err
		}
	}
	if err := cw.w.WriteByte('\n'); err != nil {
		return err
	}
	cw.rows++
	return nil
}

func (cw *Writer) Flush() error { return cw.w.Flush() }

// Rows counts lines written, header included.
func (cw *Writer) Rows() int { return cw.rows }

var EmployerHeader = []string{
	"ID", "Name", "Company Name", "Mobile", "Email", "Category",
	"City", "State", "Address", "Verified", "Active", "Created At",
}

func employerRow(e models.Employer) []string {
	created := ""
	if e.CreatedAt != nil {
		created = e.CreatedAt.Format("02-01-2006 03:04 PM")
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Name,
		e.CompanyName,
		e.Mobile,
		e.Email,
		e.CategoryName,
		e.CityName,
		e.StateName,
		e.Address,
		yesNo(e.IsVerified),
		yesNo(e.IsActive),
		created,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteEmployers writes the header and one row per employer.
func WriteEmployers(w io.Writer, employers []models.Employer) error {
	cw := NewWriter(w)
	if err := cw.Write(EmployerHeader); err != nil {
		return err
	}
	for _, e := range employers {
		if err := cw.Write(employerRow(e)); err != nil {
			return fmt.Errorf("write employer %d: %w", e.ID, err)
		}
	}
	return cw.Flush()
}

// Filename is employers_DD-MM-YYYY_hh_mm_ss_AM|PM_.csv in t's location.
func Filename(resource string, t time.Time) string {
	return fmt.Sprintf("%s_%s_.csv", resource, t.Format("02-01-2006_03_04_05_PM"))
}
