package filestore

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/pkg/errors"
)

var openFileReader = fileReader

type reader interface {
	ReadBytes(delim byte) ([]byte, error)
	Close() error
}

type bufferedFile struct {
	*bufio.Reader
	file *os.File
}

func (b *bufferedFile) Close() error {
	return b.file.Close()
}

func fileReader(directory, id string) (reader, error) {
	f, err := os.OpenFile(getFilePath(directory, id), os.O_RDONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, controller.ErrNotFound
		}
		return nil, err
	}
	return &bufferedFile{Reader: bufio.NewReader(f), file: f}, nil
}

// readLine decodes the next line into out. ok is false once there was nothing
// left to read.
func readLine(r reader, out interface{}) (bool, error) {
	bytes, err := r.ReadBytes('\n')
	eof := err == io.EOF

	if err != nil && !eof {
		return false, err
	}
	if eof && len(bytes) == 0 {
		return false, nil
	}

	if err = json.Unmarshal(bytes, out); err != nil {
		return false, err
	}
	return true, nil
}

func readArchive(directory, id string) (matchArchive, error) {
	r, err := openFileReader(directory, id)
	if err != nil {
		return matchArchive{}, err
	}
	defer r.Close()

	info := matchInfo{}
	ok, err := readLine(r, &info)
	if err != nil {
		return matchArchive{}, errors.Wrapf(err, "invalid match header in %s", id)
	}
	if !ok {
		return matchArchive{}, errors.Errorf("empty match file %s", id)
	}

	frames := []frame{}
	for {
		f := frame{}
		ok, err := readLine(r, &f)
		if err != nil {
			return matchArchive{}, errors.Wrapf(err, "invalid frame %d in %s", len(frames), id)
		}
		if !ok {
			break
		}
		frames = append(frames, f)
	}

	return matchArchive{
		info:   info,
		frames: frames,
	}, nil
}

// ReadMatch loads the match stored in a file with the given id.
func ReadMatch(directory, id string) (*rules.Match, []*rules.Frame, error) {
	archive, err := readArchive(directory, id)
	if err != nil {
		return nil, nil, err
	}

	m, frames := fromArchive(archive)
	return m, frames, nil
}
