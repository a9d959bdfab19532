package dataset

import (
	"strings"
	"testing"

	"campscore/internal/schema"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"funding_stage,sector,runway_months,team_size,ignored_column,label",
		"seed,fintech,12.5,8,whatever,1",
		"series-a,saas,6,20,x,0",
	}, "\n")

	records, labels, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 2 || len(labels) != 2 {
		t.Fatalf("got %d records / %d labels, want 2/2", len(records), len(labels))
	}
	if records[0].FundingStage != schema.StageSeed || records[0].Sector != "fintech" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[0].RunwayMonths != 12.5 || records[0].TeamSize != 8 {
		t.Errorf("record 0 numerics = %v/%v", records[0].RunwayMonths, records[0].TeamSize)
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Errorf("labels = %v", labels)
	}
	// Unlisted fields default through normalization.
	if records[0].ProductStage != "concept" {
		t.Errorf("ProductStage = %q, want concept default", records[0].ProductStage)
	}
}

func TestReadCSVMissingLabelColumn(t *testing.T) {
	input := "funding_stage,sector\nseed,fintech\n"
	if _, _, err := ReadCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for missing label column")
	}
}

func TestReadCSVSkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"funding_stage,runway_months,label",
		"seed,12,1",
		"seed,9,2",        // non-binary label
		"seed,9,notanint", // unparseable label
		"series-a,abc,0",  // bad numeric degrades to default, row kept
	}, "\n")

	records, labels, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Errorf("labels = %v", labels)
	}
	if records[1].RunwayMonths != 0 {
		t.Errorf("unparseable numeric = %v, want 0 default", records[1].RunwayMonths)
	}
}

func TestReadCSVEmptyBody(t *testing.T) {
	records, labels, err := ReadCSV(strings.NewReader("funding_stage,label\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 0 || len(labels) != 0 {
		t.Errorf("got %d/%d rows from empty body", len(records), len(labels))
	}
}
