package dispatcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed before every input line.
const Prompt = "-> "

// LineReader yields one input line per call and io.EOF when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// ConsoleReader reads lines from a plain stream. Lines have no length limit.
type ConsoleReader struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsoleReader(in io.Reader, out io.Writer) *ConsoleReader {
	return &ConsoleReader{in: bufio.NewReader(in), out: out}
}

func (r *ConsoleReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
