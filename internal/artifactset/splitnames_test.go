package artifactset

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeSplitNames(t *testing.T) {
	got, err := EncodeSplitNames([]string{"train", "eval"})
	if err != nil {
		t.Fatalf("EncodeSplitNames() err=%v", err)
	}
	if got != "train,eval" {
		t.Fatalf("EncodeSplitNames()=%q, want train,eval", got)
	}
}

func TestEncodeSplitNames_AllowsDashAndUnderscore(t *testing.T) {
	got, err := EncodeSplitNames([]string{"ok_1", "ok-2"})
	if err != nil {
		t.Fatalf("EncodeSplitNames() err=%v", err)
	}
	if got != "ok_1,ok-2" {
		t.Fatalf("EncodeSplitNames()=%q, want ok_1,ok-2", got)
	}
}

func TestEncodeSplitNames_Empty(t *testing.T) {
	got, err := EncodeSplitNames(nil)
	if err != nil {
		t.Fatalf("EncodeSplitNames() err=%v", err)
	}
	if got != "" {
		t.Fatalf("EncodeSplitNames()=%q, want empty", got)
	}
}

func TestEncodeSplitNames_RejectsInvalid(t *testing.T) {
	for _, bad := range []string{"bad split!", "-leadingdash", "_leadingunderscore", ""} {
		_, err := EncodeSplitNames([]string{"train", bad})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("EncodeSplitNames(%q) err=%v, want ValidationError", bad, err)
		}
		if verr.Name != bad {
			t.Fatalf("ValidationError.Name=%q, want %q", verr.Name, bad)
		}
	}
}

func TestDecodeSplitNames(t *testing.T) {
	got := DecodeSplitNames("train,eval")
	if want := []string{"train", "eval"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("DecodeSplitNames()=%v, want %v", got, want)
	}
}

func TestDecodeSplitNames_Empty(t *testing.T) {
	got := DecodeSplitNames("")
	if len(got) != 0 {
		t.Fatalf("DecodeSplitNames(\"\")=%v, want empty", got)
	}
}

func TestDecodeSplitNames_PermissiveOnLegacyData(t *testing.T) {
	// Decode must tolerate names a current encoder would reject.
	got := DecodeSplitNames("-legacy,bad split!")
	if want := []string{"-legacy", "bad split!"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("DecodeSplitNames()=%v, want %v", got, want)
	}
}

func TestSplitNames_RoundTrip(t *testing.T) {
	in := []string{"train", "eval", "test-1", "holdout_2"}
	encoded, err := EncodeSplitNames(in)
	if err != nil {
		t.Fatalf("EncodeSplitNames() err=%v", err)
	}
	if got := DecodeSplitNames(encoded); !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip=%v, want %v", got, in)
	}
}
