package intcode

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParseImage reads a program image written as comma separated decimal
// integers. Line breaks separate values as commas do.
func ParseImage(input io.Reader) (image []int64, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, 1<<24)

	for scanner.Scan() {
		for _, word := range strings.Split(scanner.Text(), ",") {
			word = strings.TrimSpace(word)
			if len(word) == 0 {
				continue
			}
			var value int64
			value, err = strconv.ParseInt(word, 10, 64)
			if err != nil {
				err = ErrParseNumber(word)
				return
			}
			image = append(image, value)
		}
	}

	err = scanner.Err()
	return
}

// FormatImage writes a program image as comma separated decimal integers.
func FormatImage(image []int64) string {
	words := make([]string, len(image))
	for n, value := range image {
		words[n] = strconv.FormatInt(value, 10)
	}

	return strings.Join(words, ",")
}
