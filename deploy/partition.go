package deploy

// FileEntry is one file to upload.
type FileEntry struct {
	LocalPath string
	RemoteKey string
}

// Group is a run of at most Config.Concurrent entries.
type Group []FileEntry

// partition splits entries into groups of size; only the last group may be shorter.
func partition(entries []FileEntry, size int) []Group {
	if size < 1 {
		size = 1
	}

	groups := make([]Group, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		groups = append(groups, Group(entries[start:end:end]))
	}
	return groups
}
