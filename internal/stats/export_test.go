package stats

const (
	GetEntrySQL    = getEntrySQL
	UpsertEntrySQL = upsertEntrySQL
	ListEntriesSQL = listEntriesSQL
	DeleteEntrySQL = deleteEntrySQL
)
