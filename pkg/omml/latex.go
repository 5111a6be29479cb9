package omml

import (
	"strings"
	"unicode"
)

var symbols = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`, 'ε': `\epsilon`, 'ζ': `\zeta`,
	'η': `\eta`, 'θ': `\theta`, 'ι': `\iota`, 'κ': `\kappa`, 'λ': `\lambda`, 'μ': `\mu`,
	'ν': `\nu`, 'ξ': `\xi`, 'π': `\pi`, 'ρ': `\rho`, 'σ': `\sigma`, 'τ': `\tau`,
	'υ': `\upsilon`, 'φ': `\phi`, 'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`, 'Ξ': `\Xi`, 'Π': `\Pi`,
	'Σ': `\Sigma`, 'Φ': `\Phi`, 'Ψ': `\Psi`, 'Ω': `\Omega`,

	'≤': `\leq`, '≥': `\geq`, '≠': `\neq`, '≈': `\approx`, '≡': `\equiv`, '∼': `\sim`,
	'±': `\pm`, '∓': `\mp`, '×': `\times`, '÷': `\div`, '·': `\cdot`, '⋅': `\cdot`,
	'∞': `\infty`, '∂': `\partial`, '∇': `\nabla`, '∈': `\in`, '∉': `\notin`,
	'⊂': `\subset`, '⊆': `\subseteq`, '∪': `\cup`, '∩': `\cap`, '∅': `\emptyset`,
	'∀': `\forall`, '∃': `\exists`, '¬': `\neg`, '∧': `\wedge`, '∨': `\vee`,
	'→': `\rightarrow`, '←': `\leftarrow`, '↔': `\leftrightarrow`, '⇒': `\Rightarrow`, '⇔': `\Leftrightarrow`,
	'∑': `\sum`, '∏': `\prod`, '∫': `\int`, '∬': `\iint`, '∭': `\iiint`, '∮': `\oint`,
	'√': `\sqrt`, '…': `\ldots`, '⋯': `\cdots`, '°': `^{\circ}`, '′': `'`,
}

var naryOperators = map[string]string{
	"∑": `\sum`,
	"∏": `\prod`,
	"∐": `\coprod`,
	"∫": `\int`,
	"∬": `\iint`,
	"∭": `\iiint`,
	"∮": `\oint`,
	"⋃": `\bigcup`,
	"⋂": `\bigcap`,
	"⋁": `\bigvee`,
	"⋀": `\bigwedge`,
}

var accents = map[string]string{
	"̂": `\hat`,
	"̃": `\tilde`,
	"̇": `\dot`,
	"̈": `\ddot`,
	"⃗": `\vec`,
	"̄": `\bar`,
	"̅": `\bar`,
	"̌": `\check`,
}

var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"sinh": true, "cosh": true, "tanh": true, "arcsin": true, "arccos": true, "arctan": true,
	"log": true, "ln": true, "lg": true, "exp": true, "lim": true, "max": true, "min": true,
	"sup": true, "inf": true, "det": true, "gcd": true, "arg": true,
}

var delimiters = map[string]string{
	"{": `\{`,
	"}": `\}`,
	"|": `|`,
	"‖": `\|`,
	"⟨": `\langle`,
	"⟩": `\rangle`,
	"⌊": `\lfloor`,
	"⌋": `\rfloor`,
	"⌈": `\lceil`,
	"⌉": `\rceil`,
}

// Symbols replaces unicode math symbols with their LaTeX commands.
func Symbols(s string) string {
	return replace(s, false)
}

func escapeLaTeX(s string) string {
	return replace(s, true)
}

func replace(s string, escape bool) string {
	var sb strings.Builder

	runes := []rune(s)

	for i, r := range runes {
		if escape && strings.ContainsRune("{}%#&$", r) {
			sb.WriteRune('\\')
			sb.WriteRune(r)
			continue
		}

		cmd, ok := symbols[r]

		if !ok {
			sb.WriteRune(r)
			continue
		}

		sb.WriteString(cmd)

		// commands swallow directly following letters
		if i+1 < len(runes) && unicode.IsLetter(runes[i+1]) && !strings.HasSuffix(cmd, "}") {
			sb.WriteRune(' ')
		}
	}

	return sb.String()
}

func toLaTeX(n *node) string {
	if n == nil {
		return ""
	}

	if isProperty(n.name) {
		return ""
	}

	switch n.name {
	case "r":
		return escapeLaTeX(n.child("t").plain())

	case "f":
		return `\frac{` + toLaTeX(n.child("num")) + `}{` + toLaTeX(n.child("den")) + `}`

	case "sSup":
		return brace(n.child("e")) + `^{` + toLaTeX(n.child("sup")) + `}`

	case "sSub":
		return brace(n.child("e")) + `_{` + toLaTeX(n.child("sub")) + `}`

	case "sSubSup":
		return brace(n.child("e")) + `_{` + toLaTeX(n.child("sub")) + `}^{` + toLaTeX(n.child("sup")) + `}`

	case "sPre":
		return `{}_{` + toLaTeX(n.child("sub")) + `}^{` + toLaTeX(n.child("sup")) + `}` + brace(n.child("e"))

	case "rad":
		if deg := n.child("deg"); deg != nil && !deg.empty() {
			return `\sqrt[` + toLaTeX(deg) + `]{` + toLaTeX(n.child("e")) + `}`
		}

		return `\sqrt{` + toLaTeX(n.child("e")) + `}`

	case "nary":
		chr, ok := n.prop("naryPr", "chr")

		if !ok {
			chr = "∫"
		}

		op, ok := naryOperators[chr]

		if !ok {
			op = escapeLaTeX(chr)
		}

		if sub := n.child("sub"); sub != nil && !sub.empty() {
			op += `_{` + toLaTeX(sub) + `}`
		}

		if sup := n.child("sup"); sup != nil && !sup.empty() {
			op += `^{` + toLaTeX(sup) + `}`
		}

		return op + " " + toLaTeX(n.child("e"))

	case "d":
		beg, ok := n.prop("dPr", "begChr")

		if !ok {
			beg = "("
		}

		end, ok := n.prop("dPr", "endChr")

		if !ok {
			end = ")"
		}

		sep, ok := n.prop("dPr", "sepChr")

		if !ok {
			sep = "|"
		}

		var items []string

		for _, e := range n.all("e") {
			items = append(items, toLaTeX(e))
		}

		return `\left` + delimiter(beg) + " " + strings.Join(items, escapeLaTeX(sep)) + ` \right` + delimiter(end)

	case "func":
		name := strings.TrimSpace(n.child("fName").plain())

		if functions[name] {
			return `\` + name + " " + brace(n.child("e"))
		}

		return toLaTeX(n.child("fName")) + brace(n.child("e"))

	case "acc":
		chr, ok := n.prop("accPr", "chr")

		if !ok {
			chr = "̂"
		}

		cmd, ok := accents[chr]

		if !ok {
			cmd = `\hat`
		}

		return cmd + `{` + toLaTeX(n.child("e")) + `}`

	case "bar":
		if pos, _ := n.prop("barPr", "pos"); pos == "top" {
			return `\overline{` + toLaTeX(n.child("e")) + `}`
		}

		return `\underline{` + toLaTeX(n.child("e")) + `}`

	case "groupChr":
		if pos, _ := n.prop("groupChrPr", "pos"); pos == "top" {
			return `\overbrace{` + toLaTeX(n.child("e")) + `}`
		}

		return `\underbrace{` + toLaTeX(n.child("e")) + `}`

	case "limLow":
		return toLaTeX(n.child("e")) + `_{` + toLaTeX(n.child("lim")) + `}`

	case "limUp":
		return toLaTeX(n.child("e")) + `^{` + toLaTeX(n.child("lim")) + `}`

	case "m":
		var rows []string

		for _, mr := range n.all("mr") {
			var cells []string

			for _, e := range mr.all("e") {
				cells = append(cells, toLaTeX(e))
			}

			rows = append(rows, strings.Join(cells, " & "))
		}

		return `\begin{matrix} ` + strings.Join(rows, ` \\ `) + ` \end{matrix}`

	case "eqArr":
		var rows []string

		for _, e := range n.all("e") {
			rows = append(rows, toLaTeX(e))
		}

		return `\begin{aligned} ` + strings.Join(rows, ` \\ `) + ` \end{aligned}`
	}

	var sb strings.Builder

	for _, c := range n.children {
		sb.WriteString(toLaTeX(c))
	}

	return sb.String()
}

// brace groups multi-character bases so scripts bind to the whole base.
func brace(n *node) string {
	s := strings.TrimSpace(toLaTeX(n))

	if len([]rune(s)) <= 1 {
		return s
	}

	return `{` + s + `}`
}

func delimiter(chr string) string {
	if chr == "" {
		return "."
	}

	if d, ok := delimiters[chr]; ok {
		return d
	}

	return chr
}
