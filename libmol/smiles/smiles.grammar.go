package smiles

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Outside brackets a digit is a ring closure and a letter pair is only read as Cl or Br;
// inside brackets digits run together and any element symbol is allowed.
var sSmilesLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"BracketOpen", `\[`, lexer.Push("Bracket")},
		{"Organic", `Cl|Br|[BCNOPSFI]|[bcnops]|\*`, nil},
		{"Ring", `%[0-9]{2}|[0-9]`, nil},
		{"Bond", `[-=#$:/\\]`, nil},
		{"Dot", `\.`, nil},
		{"Punct", `[()]`, nil},
	},
	"Bracket": {
		{"BracketClose", `\]`, lexer.Pop()},
		{"Chiral", `@(?:TH|AL|SP|TB|OH)[0-9]{1,2}|@@?`, nil},
		{"Element", `[A-Z][a-z]?|se|as|[bcnops]|\*`, nil},
		{"Int", `[0-9]+`, nil},
		{"Charge", `\+[0-9]+|\++|-[0-9]+|-+`, nil},
		{"Colon", `:`, nil},
	},
})

var sParseSmiles = participle.MustBuild[smilesExpr](
	participle.Lexer(sSmilesLexer),
)

type smilesExpr struct {
	Chain *chainExpr `@@?`
}

type chainExpr struct {
	Head  *atomExpr   `@@`
	Items []*itemExpr `@@*`
}

// itemExpr is a branch, a ring closure or the next atom of a chain.
type itemExpr struct {
	Branch *branchExpr `  "(" @@ ")"`
	Bond   string      `| @( Bond | Dot )?`
	Ring   string      `  ( @Ring`
	Atom   *atomExpr   `  | @@ )`
}

type branchExpr struct {
	Bond  string     `@( Bond | Dot )?`
	Chain *chainExpr `@@`
}

type atomExpr struct {
	Organic string       `  @Organic`
	Bracket *bracketExpr `| "[" @@ "]"`
}

type bracketExpr struct {
	Isotope *int   `@Int?`
	Symbol  string `@Element`
	Chiral  string `@Chiral?`
	HasH    bool   `( @"H"`
	HCount  *int   `  @Int? )?`
	Charge  string `@Charge?`
	Class   *int   `( ":" @Int )?`
}
