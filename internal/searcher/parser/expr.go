package parser

// Expr is a node in the parsed query tree. The evaluator handles every
// concrete kind exhaustively.
type Expr interface {
	isExpr()
}

// TermExpr matches documents containing a single normalized term.
type TermExpr struct {
	Term string
}

// AndExpr intersects the results of two or more children.
type AndExpr struct {
	Children []Expr
}

// OrExpr unions the results of two or more children.
type OrExpr struct {
	Children []Expr
}

// NotExpr complements its child against the corpus universe.
type NotExpr struct {
	Child Expr
}

// ProximityExpr matches documents where TermA and TermB occur within Window
// positions of each other, in either order, inclusive.
type ProximityExpr struct {
	TermA  string
	TermB  string
	Window int
}

func (*TermExpr) isExpr()      {}
func (*AndExpr) isExpr()       {}
func (*OrExpr) isExpr()        {}
func (*NotExpr) isExpr()       {}
func (*ProximityExpr) isExpr() {}
