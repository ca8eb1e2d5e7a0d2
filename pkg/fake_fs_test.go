package versync

import "errors"

// faultyFS wraps OSFS and injects errors into selected calls.
type faultyFS struct {
	OSFS
	readErr   map[string]error
	renameErr error
	writeErr  error
	onRead    func(name string)
}

func (f *faultyFS) ReadFile(name string) ([]byte, error) {
	if f.onRead != nil {
		f.onRead(name)
	}
	if err, ok := f.readErr[name]; ok {
		return nil, err
	}
	return f.OSFS.ReadFile(name)
}

func (f *faultyFS) CreateTemp(dir, pattern string) (TempFile, error) {
	tmp, err := f.OSFS.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	if f.writeErr != nil {
		return &failingWriter{TempFile: tmp, err: f.writeErr}, nil
	}
	return tmp, nil
}

func (f *faultyFS) Rename(oldpath, newpath string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.OSFS.Rename(oldpath, newpath)
}

// failingWriter writes half of the data and then fails.
type failingWriter struct {
	TempFile
	err error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	n, _ := w.TempFile.Write(p[:len(p)/2])
	return n, w.err
}

var errInjected = errors.New("injected failure")

