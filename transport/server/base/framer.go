package base

// FrameMessage is a function type that allows wrapping of the message before sending it to the client
type FrameMessage func(data []byte) []byte

// FrameLine appends a new line unless data already ends with one
func FrameLine(data []byte) []byte {
	n := len(data)
	if n > 0 && data[n-1] == '\n' {
		return data
	}
	framed := make([]byte, n+1)
	copy(framed, data)
	framed[n] = '\n'
	return framed
}
