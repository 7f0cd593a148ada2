package usecase

// AddRegistration returns the registration list with userID appended. The
// store enforces no uniqueness and neither does the editor: duplicates are
// permitted. The input slice is not mutated.
func AddRegistration(registrations []string, userID string) []string {
	out := make([]string, 0, len(registrations)+1)
	out = append(out, registrations...)
	return append(out, userID)
}

// RemoveRegistration returns the registration list with the first occurrence
// of userID removed, leaving later duplicates intact. An absent candidate is
// a no-op, not an error. The input slice is not mutated.
func RemoveRegistration(registrations []string, userID string) []string {
	for i, id := range registrations {
		if id == userID {
			out := make([]string, 0, len(registrations)-1)
			out = append(out, registrations[:i]...)
			return append(out, registrations[i+1:]...)
		}
	}
	return registrations
}
