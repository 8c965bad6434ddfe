package series

import (
	"testing"
	"time"

	"github.com/jgoulah/roomwatt/pkg/models"
)

func at(hour int, room string) models.UsageRecord {
	return models.UsageRecord{
		Timestamp:  time.Date(2024, 1, 15, hour, 0, 0, 0, time.UTC),
		RoomNumber: room,
	}
}

func rooms(s models.UsageSeries) []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.RoomNumber
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildSortsAscending(t *testing.T) {
	input := []models.UsageRecord{at(12, "c"), at(9, "a"), at(10, "b")}
	got := rooms(Build(input))
	if want := []string{"a", "b", "c"}; !equal(got, want) {
		t.Errorf("Build() order = %v, want %v", got, want)
	}
	// Input untouched
	if input[0].RoomNumber != "c" {
		t.Error("Build() mutated its input")
	}
}

func TestBuildStableOnTies(t *testing.T) {
	input := []models.UsageRecord{
		at(10, "t1"), at(8, "early"), at(10, "t2"), at(10, "t3"), at(9, "mid"), at(10, "t4"),
	}
	first := Build(input)
	want := []string{"early", "mid", "t1", "t2", "t3", "t4"}
	if got := rooms(first); !equal(got, want) {
		t.Errorf("Build() order = %v, want %v", got, want)
	}

	second := Build(first)
	if !equal(rooms(first), rooms(second)) {
		t.Errorf("Sorting twice changed order: %v vs %v", rooms(first), rooms(second))
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); len(got) != 0 {
		t.Errorf("Build(nil) = %v", got)
	}
}

func TestAssembleKeepsSummary(t *testing.T) {
	summary := models.StatusSummary{LatestLevel: models.LevelCritical, LatestAmountPaid: 42, HasAmountPaid: true}
	res := Assemble([]models.UsageRecord{at(11, "b"), at(1, "a")}, summary)

	if res.Summary != summary {
		t.Errorf("Summary = %+v, want %+v", res.Summary, summary)
	}
	if got := rooms(res.Series); !equal(got, []string{"a", "b"}) {
		t.Errorf("Series order = %v", got)
	}
}
