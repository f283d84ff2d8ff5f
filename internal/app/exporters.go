package app

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/script"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// exportBaseName is the file name stem of every download
const exportBaseName = "time-travel"

// writeString writes to w and logs any error
func (s *Server) writeString(w io.Writer, str string) {
	if _, err := io.WriteString(w, str); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

// GenerateScript writes the commit script as plain text. As a download it
// gets a shebang and an attachment disposition.
func (s *Server) GenerateScript(w http.ResponseWriter, selections []selection.Selection, download bool) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.sh", exportBaseName))
		s.writeString(w, script.Header())
	}
	if err := script.WriteTo(w, selections); err != nil {
		s.logger.Warn("write script", zap.Error(err))
	}
}

// GenerateICS writes one all-day event per selected day
func (s *Server) GenerateICS(w http.ResponseWriter, selections []selection.Selection) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ics", exportBaseName))

	stamp := s.now().UTC().Format("20060102T150405Z")

	s.writeString(w, "BEGIN:VCALENDAR\r\n")
	s.writeString(w, "VERSION:2.0\r\n")
	s.writeString(w, fmt.Sprintf("PRODID:%s\r\n", ICSProductID))
	s.writeString(w, "X-WR-CALNAME:Time Travel\r\n")
	s.writeString(w, "CALSCALE:GREGORIAN\r\n")

	for _, sel := range SortSelectionsByDate(selections) {
		day, err := calendar.ParseDate(sel.Date)
		if err != nil {
			continue
		}
		commits := script.Commits(sel)

		s.writeString(w, "BEGIN:VEVENT\r\n")
		s.writeString(w, fmt.Sprintf("UID:%s@time-travel\r\n", sel.Date))
		s.writeString(w, fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
		s.writeString(w, fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102")))
		s.writeString(w, fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102")))
		s.writeString(w, fmt.Sprintf("SUMMARY:%d fake commits\r\n", commits))
		s.writeString(w, fmt.Sprintf("DESCRIPTION:Selected %d time(s)\\, replayed as %d commits\r\n", sel.Count, commits))
		s.writeString(w, "END:VEVENT\r\n")
	}

	s.writeString(w, "END:VCALENDAR\r\n")
}

// GenerateCSV writes date, selection count and resulting commits per day
func (s *Server) GenerateCSV(w http.ResponseWriter, selections []selection.Selection) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", exportBaseName))

	s.writeString(w, "date,count,commits\n")
	for _, sel := range selections {
		s.writeString(w, fmt.Sprintf("%s,%d,%d\n", sel.Date, sel.Count, script.Commits(sel)))
	}
}

// GenerateJSON writes the selections in the selections-file format
func (s *Server) GenerateJSON(w http.ResponseWriter, selections []selection.Selection) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", exportBaseName))
	s.writeJSON(w, selections)
}
