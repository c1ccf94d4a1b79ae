package sdcard

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

type fakeCard struct {
	installed bool
	files     map[string][]string
	err       error
}

func (f *fakeCard) Installed() bool { return f.installed }

func (f *fakeCard) ListFiles(path string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.files[path], nil
}

func TestInstalled(t *testing.T) {
	card := New(&fakeCard{installed: true})
	test.That(t, card.Installed(), test.ShouldBeTrue)
	card = New(&fakeCard{})
	test.That(t, card.Installed(), test.ShouldBeFalse)
}

func TestListFiles(t *testing.T) {
	fake := &fakeCard{
		installed: true,
		files:     map[string][]string{"/logs": {"a.txt", "b.txt"}},
	}
	card := New(fake)

	files, err := card.ListFiles("/logs")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, files, test.ShouldResemble, []string{"a.txt", "b.txt"})

	files, err = card.ListFiles("/missing")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, files, test.ShouldHaveLength, 0)
}

func TestListFilesNoCard(t *testing.T) {
	card := New(&fakeCard{})
	_, err := card.ListFiles("/logs")
	test.That(t, errors.Is(err, ErrNotInstalled), test.ShouldBeTrue)
}

func TestListFilesWrapsVendorError(t *testing.T) {
	fake := &fakeCard{installed: true, err: errors.New("read failure")}
	_, err := New(fake).ListFiles("/logs")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "read failure")
	test.That(t, err.Error(), test.ShouldContainSubstring, "/logs")
}
