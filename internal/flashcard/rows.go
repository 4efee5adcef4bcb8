package flashcard

// topicRow is one row of the topics LEFT JOIN cards query shared by the SQL
// sources. Question and answer are nil for a topic without cards.
type topicRow struct {
	TopicID   string
	TopicName string
	Question  *string
	Answer    *string
}

// datasetBuilder folds ordered topic rows into a dataset.
type datasetBuilder struct {
	ds *Dataset
}

func newDatasetBuilder() *datasetBuilder {
	return &datasetBuilder{ds: &Dataset{Topics: []Topic{}}}
}

func (b *datasetBuilder) add(r topicRow) {
	n := len(b.ds.Topics)
	if n == 0 || b.ds.Topics[n-1].ID != r.TopicID {
		b.ds.Topics = append(b.ds.Topics, Topic{ID: r.TopicID, Name: r.TopicName, Cards: []Card{}})
		n++
	}
	if r.Question == nil && r.Answer == nil {
		return
	}
	t := &b.ds.Topics[n-1]
	t.Cards = append(t.Cards, Card{Q: deref(r.Question), A: deref(r.Answer)})
}

func (b *datasetBuilder) dataset() *Dataset {
	return b.ds
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const selectDatasetSQL = `SELECT t.id, t.name, c.question, c.answer
	 FROM topics t
	 LEFT JOIN cards c ON c.topic_id = t.id
	 ORDER BY t.position ASC, t.id ASC, c.position ASC, c.id ASC`
