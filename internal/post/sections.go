package post

import (
	"fmt"
	"strings"
	"text/template"
)

// SectionPurpose names the role a body section plays in the article
type SectionPurpose int

const (
	Introduction SectionPurpose = iota
	Challenge
	Approach
	Benefits
	Checklist
	CallToAction
)

// Outline is the order sections appear in
var Outline = []SectionPurpose{Introduction, Challenge, Approach, Benefits, Checklist, CallToAction}

func (p SectionPurpose) String() string {
	switch p {
	case Introduction:
		return "introduction"
	case Challenge:
		return "challenge"
	case Approach:
		return "approach"
	case Benefits:
		return "benefits"
	case Checklist:
		return "checklist"
	case CallToAction:
		return "call_to_action"
	default:
		return fmt.Sprintf("SectionPurpose(%d)", int(p))
	}
}

type section struct {
	heading string
	body    string
}

var sections = map[SectionPurpose]section{
	Introduction: {
		heading: "はじめに",
		body: `{{.Subject}}は、多くの企業が成果を伸ばすために取り組んでいるテーマです。
この記事では「{{.Title}}」と題して、明日から実践できるポイントを整理します。`,
	},
	Challenge: {
		heading: "よくある課題",
		body: `{{.Subject}}に取り組む際、次のような壁に直面しがちです。

- 何から始めればよいかわからない
- 施策の効果を測定できていない
- 社内のリソースが限られている`,
	},
	Approach: {
		heading: "{{.Subject}}を成功させるアプローチ",
		body: `まずは現状を数値で把握し、顧客の行動データから仮説を立てることが出発点です。
小さく試し、結果を検証しながら改善を重ねることで、{{.Subject}}の効果は着実に高まります。`,
	},
	Benefits: {
		heading: "得られる効果",
		body: `{{.Subject}}を継続的に改善すると、集客の質が上がり、問い合わせや成約につながる確率が高まります。
{{- if .Tags}}
あわせて{{join .Tags "・"}}の視点を取り入れると、施策の相乗効果が期待できます。
{{- end}}`,
	},
	Checklist: {
		heading: "実践チェックリスト",
		body: `- [ ] 目標とKPIを設定した
- [ ] 現状のデータを確認した
- [ ] 改善施策の優先順位を決めた
- [ ] 効果測定の仕組みを用意した`,
	},
	CallToAction: {
		heading: "まとめ",
		body: `{{.Subject}}は一度で完成するものではなく、継続的な改善が成果を生みます。
LeadFiveでは、データと行動心理学に基づくマーケティング支援を行っています。お気軽にご相談ください。`,
	},
}

var funcs = template.FuncMap{"join": strings.Join}

type sectionData struct {
	Title   string
	Subject string
	Tags    []string
}

// Body renders the article body for d
func Body(d Draft) (string, error) {
	data := sectionData{
		Title:   d.Title,
		Subject: d.Keyword,
		Tags:    d.Tags,
	}
	if data.Subject == "" {
		data.Subject = d.Title
	}

	var b strings.Builder
	for i, purpose := range Outline {
		sec, ok := sections[purpose]
		if !ok {
			return "", fmt.Errorf("no template for section %s", purpose)
		}
		heading, err := execute(purpose.String()+"-heading", sec.heading, data)
		if err != nil {
			return "", err
		}
		body, err := execute(purpose.String(), sec.body, data)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n", heading, strings.TrimSpace(body))
	}
	return b.String(), nil
}

func execute(name, text string, data sectionData) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.String(), nil
}
