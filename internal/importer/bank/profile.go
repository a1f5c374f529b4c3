package bank

type amountMode int

const (
	// amountSigned is one signed column, e.g. "Montante" holding "-10,00".
	amountSigned amountMode = iota
	// amountSplit is a pair of unsigned debit and credit columns.
	amountSplit
)

// Profile is the column layout of one statement export.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order, so layouts with more columns go first.
var profiles = []Profile{
	{
		Name:       "card",
		DateCol:    "Data",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "statement",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSigned,
		AmountCol:  "Movimento",
	},
	{
		Name:       "account",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSigned,
		AmountCol:  "Montante",
	},
}
