// Package services – prompt construction.
//
// This file builds the natural-language prompts sent to the generation
// backend. Each numeric survey answer is enriched with the original question
// text and a label for its 1–5 Likert value before serialization, so the
// model sees meaning rather than bare integers.
//
// The weighted evaluation criteria (communication 25%, values/interests 25%,
// emotional expression 20%, interpersonal roles 15%, stress tolerance 15%)
// and the required-fields output contract are fixed: the downstream parser
// depends on the model honoring exactly this JSON shape, so the instructions
// must not drift.
package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

// questionText maps survey question ids to the original Japanese statements.
var questionText = map[string]string{
	"q1":  "大勢の人と一緒にいることでエネルギーを得る方だ",
	"q2":  "新しい人と会うとき、すぐに打ち解けて話すことができる方だ",
	"q3":  "週末に友人と集まる計画を立てるのが好きだ",
	"q4":  "物事を考えるとき、具体的な事実や詳細に注目する方だ",
	"q5":  "新しいプロジェクトを始めるとき、まず具体的な手順や計画を立てる方だ",
	"q6":  "過去の経験や実績に基づいて決断を下すことが多い",
	"q7":  "意見の対立が生じたとき、論理的な根拠を重視して解決しようとする方だ",
	"q8":  "重要な決断を下す際、客観的なデータや事実を基にする方だ",
	"q9":  "批判やフィードバックを受けるとき、内容の正確さや論理性を重視する方だ",
	"q10": "日常生活で、計画を立てて物事を進めることを好む方だ",
	"q11": "締め切りやスケジュールが厳しいプロジェクトでは、早めに終わらせることを目指す方だ",
	"q12": "新しい情報を得たとき、すぐに結論を出して行動に移りたいと思う方だ",
	"q13": "チームで作業するとき、リーダーシップを発揮して方向性を示す役割を好む方だ",
	"q14": "問題に直面したとき、まず論理的に分析して解決策を見つける方だ",
	"q15": "日常生活で、ルーチンや習慣を守ることが多い方だ",
	"q16": "人間関係で聞き手の役割を好む方だ",
	"q17": "意見の対立が生じたとき、話し合いで解決しようとする方だ",
	"q18": "新しい環境に適応するのが得意だ",
	"q19": "人と競争するのが好きだ",
}

// standardScale labels the default 5-point Likert values.
var standardScale = map[int]string{
	1: "全く当てはまらない",
	2: "あまり当てはまらない",
	3: "どちらとも言えない",
	4: "やや当てはまる",
	5: "かなり当てはまる",
}

// customScales overrides the standard labels for questions whose answer axis
// is not agreement strength.
var customScales = map[string]map[int]string{
	"q16": {
		1: "常に聞き手を好む",
		2: "どちらかといえば聞き手を好む",
		3: "状況によって使い分ける",
		4: "どちらかといえば話し手を好む",
		5: "常に話し手を好む",
	},
	"q17": {
		1: "対立を避ける",
		2: "相手に合わせる",
		3: "妥協点を探る",
		4: "話し合いで解決を目指す",
		5: "自分の意見を主張する",
	},
}

// answerMeaning returns the natural-language label for a question's 1–5
// value, preferring a question-specific scale when one exists.
func answerMeaning(questionID string, value int) string {
	if scale, ok := customScales[questionID]; ok {
		if m, ok := scale[value]; ok {
			return m
		}
		return "不明な回答"
	}
	if m, ok := standardScale[value]; ok {
		return m
	}
	return "不明な回答"
}

// enrichedAnswer pairs a numeric answer with its question text and meaning.
type enrichedAnswer struct {
	Question string `json:"question"`
	Answer   int    `json:"answer"`
	Meaning  string `json:"meaning"`
}

// enrichedMember is the JSON shape embedded in prompts for one member.
type enrichedMember struct {
	Profile            domain.Profile            `json:"profile"`
	PersonalityComment domain.PersonalityComment `json:"personality_comment"`
	SurveyResponses    map[string]enrichedAnswer `json:"survey_responses"`
}

// enrichMember converts a MemberData into its prompt representation,
// attaching question text and answer labels to every survey response.
func enrichMember(m *domain.MemberData) enrichedMember {
	enriched := make(map[string]enrichedAnswer, len(m.SurveyResponse.Responses))
	for qid, value := range m.SurveyResponse.Responses {
		q, ok := questionText[qid]
		if !ok {
			q = "不明な質問"
		}
		enriched[qid] = enrichedAnswer{
			Question: q,
			Answer:   value,
			Meaning:  answerMeaning(qid, value),
		}
	}
	return enrichedMember{
		Profile:            m.Profile,
		PersonalityComment: m.PersonalityComment,
		SurveyResponses:    enriched,
	}
}

// mustJSON renders v as indented JSON for prompt embedding. Marshaling the
// enriched shapes cannot fail; a failure would indicate a programming error,
// so the error text is embedded rather than propagated.
func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}

// BuildPairPrompt produces the full generation prompt for one pair. The
// criteria weights and the output-format block are a fixed contract with the
// parser and must be reproduced verbatim on every call.
func BuildPairPrompt(a, b *domain.MemberData) string {
	var sb strings.Builder
	sb.WriteString("You are an expert in diagnosing interpersonal compatibility.\n\n")
	fmt.Fprintf(&sb, "Based on the provided JSON data for %s and %s, evaluate their compatibility according to the following criteria:\n",
		a.Profile.Name, b.Profile.Name)
	sb.WriteString(`- Alignment of communication styles.
- Commonalities in values, interests, and hobbies.
- Approaches to emotional expression and conflict resolution.
- Compatibility in interpersonal roles.
- Similarity in stress tolerance and handling pressure.

# Input
`)
	fmt.Fprintf(&sb, "## %s\n%s\n\n", a.Profile.Name, mustJSON(enrichMember(a)))
	fmt.Fprintf(&sb, "## %s\n%s\n\n", b.Profile.Name, mustJSON(enrichMember(b)))
	sb.WriteString(`# Evaluation Guidelines
- Assess compatibility based on the following weightings:
  - Communication styles: 25%
  - Values, interests, and hobbies: 25%
  - Emotional expression and conflict resolution: 20%
  - Interpersonal roles: 15%
  - Stress tolerance: 15%
- For each criterion, evaluate similarity or complementarity using the provided data.
- Use survey responses to infer traits where direct indicators are unavailable.

# Output
Return a JSON object with the following structure (do not include markdown formatting or code blocks).
All text content (description and advice) must be in Japanese:

{
  "degree": number, // An integer compatibility score from 0 to 100.
  "description": {
    "diagnosis_reasons": string,  // Reasons for the compatibility score.
    "strengths": string,  // Positive aspects of the relationship.
    "weaknesses": string,  // Areas for improvement.
    "negative_perspectives": string,  // Potential conflicts or mismatches.
    "positive_perspectives": string  // Opportunities for growth and harmony.
  },
  "advice": {
    "action_plan": string, // Practical advice and an actionable plan for improving the relationship.
    "steps": string[]  // Include specific steps (e.g., "Discuss differing values during a weekly meeting").
  }
}

Ensure that:
- The "description" is formatted in markdown, covering all specified sections in a clear and balanced manner.
- The output is entirely in Japanese.
- The JSON is valid and adheres to the specified structure.`)
	return sb.String()
}

// BuildGroupPrompt produces the second-order prompt that turns aggregate
// statistics plus all members' data into a group-level narrative. Output is
// the GroupAnalysis JSON shape, again without code fences.
func BuildGroupPrompt(groupName string, memberCount int, averageDegree int, best, worst domain.PairStat, members []domain.MemberData) string {
	enriched := make([]enrichedMember, 0, len(members))
	for i := range members {
		enriched = append(enriched, enrichMember(&members[i]))
	}

	var sb strings.Builder
	sb.WriteString("あなたはチーム分析の専門家です。以下のグループの相性分析を行ってください。\n\n")
	sb.WriteString("# グループ情報\n")
	fmt.Fprintf(&sb, "グループ名: %s\n", groupName)
	fmt.Fprintf(&sb, "メンバー数: %d人\n", memberCount)
	fmt.Fprintf(&sb, "平均相性度: %d%%\n", averageDegree)
	fmt.Fprintf(&sb, "最も相性の良いペア: %sと%s (%d%%)\n", pairName(best, 0), pairName(best, 1), best.Degree)
	fmt.Fprintf(&sb, "最も改善が必要なペア: %sと%s (%d%%)\n\n", pairName(worst, 0), pairName(worst, 1), worst.Degree)
	fmt.Fprintf(&sb, "# メンバーデータ\n%s\n\n", mustJSON(enriched))
	sb.WriteString(`# 分析要件
以下の項目についてグループ全体の分析を行い、日本語で回答してください:
1. 全体評価: グループの相性の総合的な評価と特徴
2. グループの強み: チームとしての強みや長所
3. グループの課題: 改善すべき点や潜在的な問題
4. 関係性ダイナミクス: グループ内の人間関係の特徴や傾向
5. 成長可能性: グループとしての成長機会や発展性
6. アクションプラン: グループとしての改善方法
7. 具体的な推奨事項: 簡潔な箇条書きで5つほど提案

# 出力形式
以下のJSON形式で出力してください（コードブロックやマークダウン形式は不要）:

{
  "overall_assessment": "グループ全体の評価",
  "group_strengths": "グループの強み",
  "group_challenges": "グループの課題",
  "relationship_dynamics": "関係性ダイナミクス",
  "growth_opportunities": "成長可能性",
  "action_plan": "アクションプラン",
  "recommendations": ["推奨事項1", "推奨事項2", "推奨事項3", "推奨事項4", "推奨事項5"]
}`)
	return sb.String()
}

// pairName returns the i-th display name of a pair, with a placeholder for
// members whose profile could not be resolved.
func pairName(p domain.PairStat, i int) string {
	if i < len(p.Names) && p.Names[i] != "" {
		return p.Names[i]
	}
	return "不明なユーザー"
}
