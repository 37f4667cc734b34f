package entity

// Campaign is one invocation of the mailer against one recipient source,
// template, and subject.
type Campaign struct {
	ID           string
	TemplatePath string
	SourcePath   string
	Subject      string
	Sender       Sender
}

// PassResult aggregates the terminal outcomes of one full iteration over a
// recipient list.
type PassResult struct {
	Succeeded int
	Failed    int
}

// Add merges the counts of another pass into this one.
func (p *PassResult) Add(other PassResult) {
	p.Succeeded += other.Succeeded
	p.Failed += other.Failed
}
