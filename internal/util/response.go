package util

type Envelope map[string]any

func Message(message string) Envelope {
	return Envelope{"message": message}
}

// Error reports failures under the same "message" key the success envelope
// uses; clients read one field either way.
func Error(message string) Envelope {
	return Message(message)
}
