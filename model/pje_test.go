package model

import (
	"testing"

	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

func TestParsePartition(t *testing.T) {
	t.Parallel()

	valid := map[string]Partition{
		"1": PartitionDegree1,
		"2": PartitionDegree2,
	}
	for in, want := range valid {
		got, err := ParsePartition(in)
		if err != nil {
			t.Fatalf("ParsePartition(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePartition(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"", "0", "3", "12", "one", " 1"} {
		_, err := ParsePartition(in)
		if err == nil {
			t.Fatalf("ParsePartition(%q) accepted an unknown degree", in)
		}
		appErr, ok := shared.GetAppError(err)
		if !ok {
			t.Fatalf("ParsePartition(%q): expected AppError, got %v", in, err)
		}
		if appErr.Kind != shared.KindInvalidPartition || appErr.StatusCode != 400 {
			t.Fatalf("ParsePartition(%q): kind=%s status=%d", in, appErr.Kind, appErr.StatusCode)
		}
	}
}
