package access

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeLister struct {
	ids   []int64
	err   error
	calls int
}

func (f *fakeLister) ListAccessibleDocumentIDs(ctx context.Context, userID int64) ([]int64, error) {
	f.calls++
	return f.ids, f.err
}

func TestFilter_AccessibleDocumentIDs(t *testing.T) {
	lister := &fakeLister{ids: []int64{3, 1, 7}}
	filter := NewFilter(lister)

	got, err := filter.AccessibleDocumentIDs(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := map[int64]struct{}{1: {}, 3: {}, 7: {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFilter_AccessibleDocumentIDs_UnknownUser(t *testing.T) {
	lister := &fakeLister{ids: nil}
	filter := NewFilter(lister)

	got, err := filter.AccessibleDocumentIDs(context.Background(), 99)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
	if got == nil {
		t.Fatal("expected non-nil set for unknown user")
	}
}

func TestFilter_AccessibleDocumentIDs_InvalidUser(t *testing.T) {
	lister := &fakeLister{ids: []int64{1, 2}}
	filter := NewFilter(lister)

	for _, userID := range []int64{0, -1} {
		got, err := filter.AccessibleDocumentIDs(context.Background(), userID)
		if err != nil {
			t.Fatalf("user %d: expected no error, got %v", userID, err)
		}
		if len(got) != 0 {
			t.Fatalf("user %d: expected empty set, got %v", userID, got)
		}
	}
	if lister.calls != 0 {
		t.Fatalf("expected no storage calls for invalid users, got %d", lister.calls)
	}
}

func TestFilter_AccessibleDocumentIDs_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	filter := NewFilter(&fakeLister{err: boom})

	_, err := filter.AccessibleDocumentIDs(context.Background(), 42)
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
}

func TestRestrict(t *testing.T) {
	accessible := map[int64]struct{}{1: {}, 2: {}, 5: {}}

	got := Restrict(accessible, []int64{5, 9, 1, 2, 8})
	want := []int64{5, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRestrict_EmptyAccessible(t *testing.T) {
	got := Restrict(map[int64]struct{}{}, []int64{1, 2, 3})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
