package omml

import (
	"strings"
	"unicode"
)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func mrow(n *node) string {
	if n == nil {
		return "<mrow></mrow>"
	}

	var sb strings.Builder

	sb.WriteString("<mrow>")

	for _, c := range n.children {
		sb.WriteString(toMathML(c))
	}

	sb.WriteString("</mrow>")

	return sb.String()
}

func mo(s string) string {
	return "<mo>" + xmlEscaper.Replace(s) + "</mo>"
}

func toMathML(n *node) string {
	if n == nil || isProperty(n.name) {
		return ""
	}

	switch n.name {
	case "r":
		return tokens(n.child("t").plain())

	case "f":
		return "<mfrac>" + mrow(n.child("num")) + mrow(n.child("den")) + "</mfrac>"

	case "sSup":
		return "<msup>" + mrow(n.child("e")) + mrow(n.child("sup")) + "</msup>"

	case "sSub":
		return "<msub>" + mrow(n.child("e")) + mrow(n.child("sub")) + "</msub>"

	case "sSubSup":
		return "<msubsup>" + mrow(n.child("e")) + mrow(n.child("sub")) + mrow(n.child("sup")) + "</msubsup>"

	case "sPre":
		return "<mmultiscripts>" + mrow(n.child("e")) + "<mprescripts/>" + mrow(n.child("sub")) + mrow(n.child("sup")) + "</mmultiscripts>"

	case "rad":
		if deg := n.child("deg"); deg != nil && !deg.empty() {
			return "<mroot>" + mrow(n.child("e")) + mrow(deg) + "</mroot>"
		}

		return "<msqrt>" + mrow(n.child("e")) + "</msqrt>"

	case "nary":
		chr, ok := n.prop("naryPr", "chr")

		if !ok {
			chr = "∫"
		}

		return "<mrow><munderover>" + mo(chr) + mrow(n.child("sub")) + mrow(n.child("sup")) + "</munderover>" + mrow(n.child("e")) + "</mrow>"

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

		var sb strings.Builder

		sb.WriteString("<mrow>")
		sb.WriteString(mo(beg))

		for i, e := range n.all("e") {
			if i > 0 {
				sb.WriteString(mo(sep))
			}

			sb.WriteString(mrow(e))
		}

		sb.WriteString(mo(end))
		sb.WriteString("</mrow>")

		return sb.String()

	case "func":
		return "<mrow>" + mrow(n.child("fName")) + "<mo>&#x2061;</mo>" + mrow(n.child("e")) + "</mrow>"

	case "acc":
		chr, ok := n.prop("accPr", "chr")

		if !ok {
			chr = "̂"
		}

		return `<mover accent="true">` + mrow(n.child("e")) + mo(chr) + "</mover>"

	case "bar":
		if pos, _ := n.prop("barPr", "pos"); pos == "top" {
			return "<mover>" + mrow(n.child("e")) + mo("¯") + "</mover>"
		}

		return "<munder>" + mrow(n.child("e")) + mo("_") + "</munder>"

	case "groupChr":
		chr, ok := n.prop("groupChrPr", "chr")

		if !ok {
			chr = "⏟"
		}

		if pos, _ := n.prop("groupChrPr", "pos"); pos == "top" {
			return "<mover>" + mrow(n.child("e")) + mo(chr) + "</mover>"
		}

		return "<munder>" + mrow(n.child("e")) + mo(chr) + "</munder>"

	case "limLow":
		return "<munder>" + mrow(n.child("e")) + mrow(n.child("lim")) + "</munder>"

	case "limUp":
		return "<mover>" + mrow(n.child("e")) + mrow(n.child("lim")) + "</mover>"

	case "m":
		var sb strings.Builder

		sb.WriteString("<mtable>")

		for _, mr := range n.all("mr") {
			sb.WriteString("<mtr>")

			for _, e := range mr.all("e") {
				sb.WriteString("<mtd>" + mrow(e) + "</mtd>")
			}

			sb.WriteString("</mtr>")
		}

		sb.WriteString("</mtable>")

		return sb.String()

	case "eqArr":
		var sb strings.Builder

		sb.WriteString("<mtable>")

		for _, e := range n.all("e") {
			sb.WriteString("<mtr><mtd>" + mrow(e) + "</mtd></mtr>")
		}

		sb.WriteString("</mtable>")

		return sb.String()
	}

	var sb strings.Builder

	for _, c := range n.children {
		sb.WriteString(toMathML(c))
	}

	return sb.String()
}

// tokens splits run text into identifier, number and operator tokens.
func tokens(s string) string {
	var sb strings.Builder
	var number []rune

	flush := func() {
		if len(number) == 0 {
			return
		}

		sb.WriteString("<mn>" + string(number) + "</mn>")
		number = number[:0]
	}

	for _, r := range s {
		switch {
		case unicode.IsDigit(r) || (r == '.' && len(number) > 0):
			number = append(number, r)

		case unicode.IsSpace(r):
			flush()

		case unicode.IsLetter(r):
			flush()
			sb.WriteString("<mi>" + xmlEscaper.Replace(string(r)) + "</mi>")

		default:
			flush()
			sb.WriteString(mo(string(r)))
		}
	}

	flush()

	return sb.String()
}
