package sheets

import (
	"strconv"
	"strings"
	"time"

	"opsboard/internal/core"
)

// parseServiceJobs converts a values matrix (as returned by the Sheets API)
// into jobs inside [from, to]. The header row must include Date, Status and
// Amount; an Id column is optional. Rows with an unparseable date are
// counted and skipped, never guessed at.
func parseServiceJobs(values [][]interface{}, from, to time.Time) ([]core.ServiceJob, int) {
	if len(values) == 0 {
		return nil, 0
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "Id")
	colDate := indexOf(headers, "Date")
	colStatus := indexOf(headers, "Status")
	colAmount := indexOf(headers, "Amount")
	if colDate == -1 || colStatus == -1 || colAmount == -1 {
		return nil, len(values) - 1
	}

	var jobs []core.ServiceJob
	skipped := 0
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		d, err := core.ParseDate(strings.TrimSpace(safeGet(row, colDate)))
		if err != nil {
			skipped++
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		jobs = append(jobs, core.ServiceJob{
			ID:     parseID(safeGet(row, colID)),
			Status: core.JobStatus(strings.TrimSpace(safeGet(row, colStatus))),
			Amount: core.ParseAmount(safeGet(row, colAmount)),
			Date:   d,
		})
	}
	return jobs, skipped
}

// parseDeliveryTickets converts a values matrix into tickets inside
// [from, to]. Expected headers: Date, Status, Amount, plus optional
// GallonsDelivered, Qty and Id.
func parseDeliveryTickets(values [][]interface{}, from, to time.Time) ([]core.DeliveryTicket, int) {
	if len(values) == 0 {
		return nil, 0
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "Id")
	colDate := indexOf(headers, "Date")
	colStatus := indexOf(headers, "Status")
	colAmount := indexOf(headers, "Amount")
	colGallons := indexOf(headers, "GallonsDelivered")
	colQty := indexOf(headers, "Qty")
	if colDate == -1 || colStatus == -1 || colAmount == -1 {
		return nil, len(values) - 1
	}

	var tickets []core.DeliveryTicket
	skipped := 0
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		d, err := core.ParseDate(strings.TrimSpace(safeGet(row, colDate)))
		if err != nil {
			skipped++
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		tickets = append(tickets, core.DeliveryTicket{
			ID:      parseID(safeGet(row, colID)),
			Status:  core.TicketStatus(strings.TrimSpace(safeGet(row, colStatus))),
			Amount:  core.ParseAmount(safeGet(row, colAmount)),
			Gallons: core.ResolveGallons(safeGet(row, colGallons), safeGet(row, colQty)),
			Date:    d,
		})
	}
	return tickets, skipped
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = toString(v)
	}
	return out
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
