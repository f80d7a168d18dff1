package dashboard

// EventKind enumerates state change notifications.
type EventKind int

const (
	EventFilesRefreshed EventKind = iota
	EventNFCUpdated
	EventWlanUpdated
	EventRowChanged
	EventStatusChanged
	EventModalChanged
)

func (k EventKind) String() string {
	switch k {
	case EventFilesRefreshed:
		return "files_refreshed"
	case EventNFCUpdated:
		return "nfc_updated"
	case EventWlanUpdated:
		return "wlan_updated"
	case EventRowChanged:
		return "row_changed"
	case EventStatusChanged:
		return "status_changed"
	case EventModalChanged:
		return "modal_changed"
	default:
		return ""
	}
}

// Event announces a state change. Hash is set for row events, Err when the change was a failure.
type Event struct {
	Kind EventKind
	Hash string
	Err  error
}

// emit sends without blocking; when nobody is listening the event is dropped.
func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
