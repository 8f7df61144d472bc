package artifactset

import (
	"errors"
	"strings"
	"testing"

	"github.com/lodestar-ml/lodestar-go/internal/domain"
)

func artifactWithSplits(uri, splitNames string) domain.Artifact {
	return domain.Artifact{Type: "Examples", URI: uri, SplitNames: splitNames}
}

func TestSingle(t *testing.T) {
	a := artifactWithSplits("s3://b/a", "")
	got, err := Single([]domain.Artifact{a})
	if err != nil {
		t.Fatalf("Single() err=%v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("Single()=%v, want %v", got, a)
	}
}

func TestSingle_EmptyList(t *testing.T) {
	_, err := Single(nil)
	var cerr *CardinalityError
	if !errors.As(err, &cerr) {
		t.Fatalf("Single() err=%v, want CardinalityError", err)
	}
	if cerr.Count != 0 {
		t.Fatalf("Count=%d, want 0", cerr.Count)
	}
	if !strings.Contains(cerr.Error(), "0") {
		t.Fatalf("error %q should report the observed length", cerr.Error())
	}
}

func TestSingle_TwoElements(t *testing.T) {
	_, err := Single([]domain.Artifact{artifactWithSplits("a", ""), artifactWithSplits("b", "")})
	var cerr *CardinalityError
	if !errors.As(err, &cerr) {
		t.Fatalf("Single() err=%v, want CardinalityError", err)
	}
	if cerr.Count != 2 {
		t.Fatalf("Count=%d, want 2", cerr.Count)
	}
}

func TestSingleURI(t *testing.T) {
	got, err := SingleURI([]domain.Artifact{artifactWithSplits("s3://b/only", "")})
	if err != nil {
		t.Fatalf("SingleURI() err=%v", err)
	}
	if got != "s3://b/only" {
		t.Fatalf("SingleURI()=%q, want s3://b/only", got)
	}
}

func TestSplitURI(t *testing.T) {
	a := artifactWithSplits("s3://b/a", "train")
	b := artifactWithSplits("s3://b/b", "eval")
	got, err := SplitURI([]domain.Artifact{a, b}, "train")
	if err != nil {
		t.Fatalf("SplitURI() err=%v", err)
	}
	if got != "s3://b/a/train" {
		t.Fatalf("SplitURI()=%q, want s3://b/a/train", got)
	}
}

func TestSplitURI_TrailingSeparator(t *testing.T) {
	a := artifactWithSplits("s3://b/a/", "train")
	got, err := SplitURI([]domain.Artifact{a}, "train")
	if err != nil {
		t.Fatalf("SplitURI() err=%v", err)
	}
	if got != "s3://b/a/train" {
		t.Fatalf("SplitURI()=%q, want s3://b/a/train", got)
	}
}

func TestSplitURI_NoMatch(t *testing.T) {
	a := artifactWithSplits("s3://b/a", "train")
	b := artifactWithSplits("s3://b/b", "eval")
	_, err := SplitURI([]domain.Artifact{a, b}, "test")
	var cerr *CardinalityError
	if !errors.As(err, &cerr) {
		t.Fatalf("SplitURI() err=%v, want CardinalityError", err)
	}
	if cerr.Count != 0 {
		t.Fatalf("Count=%d, want 0", cerr.Count)
	}
}

func TestSplitURI_MultipleMatchesListsArtifacts(t *testing.T) {
	a := artifactWithSplits("s3://b/a", "train,eval")
	b := artifactWithSplits("s3://b/b", "train")
	_, err := SplitURI([]domain.Artifact{a, b}, "train")
	var cerr *CardinalityError
	if !errors.As(err, &cerr) {
		t.Fatalf("SplitURI() err=%v, want CardinalityError", err)
	}
	if cerr.Count != 2 {
		t.Fatalf("Count=%d, want 2", cerr.Count)
	}
	for _, uri := range []string{"s3://b/a", "s3://b/b"} {
		if !strings.Contains(cerr.Error(), uri) {
			t.Fatalf("error %q should list colliding artifact %q", cerr.Error(), uri)
		}
	}
}

func TestJoinURI(t *testing.T) {
	cases := []struct {
		base    string
		segment string
		want    string
	}{
		{"s3://b/x", "train", "s3://b/x/train"},
		{"s3://b/x/", "train", "s3://b/x/train"},
		{"/local/dir", "eval", "/local/dir/eval"},
		{"", "train", "train"},
	}
	for _, tc := range cases {
		if got := JoinURI(tc.base, tc.segment); got != tc.want {
			t.Fatalf("JoinURI(%q, %q)=%q, want %q", tc.base, tc.segment, got, tc.want)
		}
	}
}
