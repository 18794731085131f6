package crew

import (
	"context"
	"testing"

	"github.com/Comcast/rulegraph/util/testutil"
)

func TestCount(t *testing.T) {
	a := testutil.MustBuild(t, testutil.MonsterRules, 0)

	var msgs []string
	for i := 0; i < 50; i++ {
		msgs = append(msgs, testutil.MonsterMessages...)
	}

	for _, workers := range []int{0, 1, 3, 1000} {
		n, err := Count(context.Background(), a, msgs, workers)
		if err != nil {
			t.Fatal(err)
		}
		if n != 100 {
			t.Fatalf("workers %d: count %d", workers, n)
		}
	}

	n, err := Count(context.Background(), a, nil, 2)
	if err != nil || n != 0 {
		t.Fatalf("empty: %d %v", n, err)
	}
}

func TestCountCancelled(t *testing.T) {
	a := testutil.MustBuild(t, testutil.MonsterRules, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Count(ctx, a, []string{"ababbb", "abbbab", "a", "b", "c"}, 1); err == nil {
		t.Fatal("expected an error")
	}
}
