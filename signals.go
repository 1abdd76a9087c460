package skeptic

import (
	"regexp"
	"strings"
)

// ──────────────────────────────────────────────
// Text Signal Analyzers — independent rule-based detectors
// ──────────────────────────────────────────────
//
// Every analyzer is a total pure function: arbitrary input (empty, huge,
// unusual Unicode) yields a neutral result, never a panic. Pattern
// tables are bilingual (Russian + English).

type weightedPhrase struct {
	phrase string
	weight int
}

var politenessPhrases = []weightedPhrase{
	{phrase: "здравствуйте", weight: 1}, {phrase: "добрый день", weight: 1},
	{phrase: "добрый вечер", weight: 1}, {phrase: "спасибо", weight: 1},
	{phrase: "благодарю", weight: 1}, {phrase: "меня зовут", weight: 2},
	{phrase: "приятно познакомиться", weight: 2},
	{phrase: "hello", weight: 1}, {phrase: "good afternoon", weight: 1},
	{phrase: "thank you", weight: 1}, {phrase: "thanks", weight: 1},
	{phrase: "my name is", weight: 2}, {phrase: "nice to meet you", weight: 2},
}

// PolitenessScore returns the greeting/thanks/introduction bonus for one
// message. Aggregation over a trailing window and the cap live in the
// scorer.
func PolitenessScore(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, p := range politenessPhrases {
		if strings.Contains(lower, p.phrase) {
			score += p.weight
		}
	}
	return score
}

var obsequiousPhrases = []string{
	"вы лучший", "вы самый", "только вы", "умоляю",
	"you are the best", "only you can", "i beg you", "begging you",
}

// IsObsequious flags excessive flattery. Two or more flagged messages in
// the trailing window earn a flat penalty in the scorer.
func IsObsequious(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range obsequiousPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var urgencyPhrases = []weightedPhrase{
	{phrase: "срочно", weight: 2}, {phrase: "прямо сейчас", weight: 3},
	{phrase: "быстрее", weight: 1}, {phrase: "немедленно", weight: 3},
	{phrase: "последний шанс", weight: 3},
	{phrase: "right now", weight: 3}, {phrase: "urgent", weight: 2},
	{phrase: "immediately", weight: 3}, {phrase: "last chance", weight: 3},
	{phrase: "asap", weight: 2},
}

// PressureScore returns a non-positive contribution for urgency and
// ultimatum phrasing. Uncapped downward.
func PressureScore(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, p := range urgencyPhrases {
		if strings.Contains(lower, p.phrase) {
			score -= p.weight
		}
	}
	return score
}

var ultimatumRe = regexp.MustCompile(
	`(?i)(или мы уходим|или сделк[аи] не будет|иначе (мы )?уйд|or we walk away|or the deal is off|take it or leave it)`)

// IsUltimatum detects hard-pressure ultimatum phrasing (red flag).
func IsUltimatum(text string) bool {
	return ultimatumRe.MatchString(text)
}

var (
	officialDocRe = regexp.MustCompile(
		`(?i)(виз|разрешени|регистраци|документ|оформлени|патент|visa|permit|registration|paperwork|official document)`)
	shortDaysRe  = regexp.MustCompile(`(?i)(\d+)\s*(день|дня|дней|сут|day|days)`)
	shortHoursRe = regexp.MustCompile(`(?i)(\d+)\s*(час|часа|часов|hour|hours)`)
	instantRe    = regexp.MustCompile(`(?i)(завтра|за 48 часов|48 hours|tomorrow|overnight)`)
)

// UnrealisticTimeline is true when a message references official
// documents and an implausibly short duration for them.
func UnrealisticTimeline(text string) bool {
	if !officialDocRe.MatchString(text) {
		return false
	}
	if instantRe.MatchString(text) {
		return true
	}
	if m := shortDaysRe.FindStringSubmatch(text); m != nil {
		if n := atoiSafe(m[1]); n > 0 && n <= 5 {
			return true
		}
	}
	if m := shortHoursRe.FindStringSubmatch(text); m != nil {
		if n := atoiSafe(m[1]); n > 0 && n <= 48 {
			return true
		}
	}
	return false
}

var (
	digitsRe   = regexp.MustCompile(`\d`)
	currencyRe = regexp.MustCompile(`(?i)(₽|\$|€|руб|рубл|доллар|евро|usd|eur|rub)`)
	monthRe    = regexp.MustCompile(
		`(?i)(январ|феврал|март|апрел|ма[йя]|июн|июл|август|сентябр|октябр|ноябр|декабр|20\d\d|january|february|march|april|may|june|july|august|september|october|november|december)`)
	cityRe = regexp.MustCompile(
		`(?i)(москв|петербург|казан|екатеринбург|новосибирск|warsaw|варшав|берлин|berlin|дуба[йе]|dubai|стамбул|istanbul)`)
)

// ConcretenessScore rewards numbers, currency, dates and named cities.
func ConcretenessScore(text string, cap int) int {
	score := 0
	if digitsRe.MatchString(text) {
		score++
	}
	if currencyRe.MatchString(text) {
		score++
	}
	if monthRe.MatchString(text) {
		score++
	}
	if cityRe.MatchString(text) {
		score++
	}
	if score > cap {
		score = cap
	}
	return score
}

var businessGroups = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(ваканси|должност|позици|vacanc|position|job opening)`),
	regexp.MustCompile(`(?i)(зарплат|оклад|salary|wage|pay rate)`),
	regexp.MustCompile(`(?i)(жиль|общежити|проживани|housing|accommodation|dorm)`),
	regexp.MustCompile(`(?i)(график|смен|часов в|schedule|shift|working hours)`),
	regexp.MustCompile(`(?i)(город|локаци|адрес|location|city|region)`),
	regexp.MustCompile(`(?i)(договор|контракт|contract|agreement)`),
}

// BusinessFocusScore rewards vacancy/salary/housing/schedule/location/
// contract keywords, one point per distinct group.
func BusinessFocusScore(text string, cap int) int {
	score := 0
	for _, re := range businessGroups {
		if re.MatchString(text) {
			score++
		}
	}
	if score > cap {
		score = cap
	}
	return score
}

// RedFlag names a matched fraud indicator with its fixed penalty.
type RedFlag struct {
	Name    string
	Penalty int
}

type redFlagRule struct {
	name    string
	penalty int
	re      *regexp.Regexp
}

// Ordered rule table: evaluated top to bottom, all matches apply.
var redFlagRules = []redFlagRule{
	{"crypto_upfront", 25, regexp.MustCompile(
		`(?i)((крипт|usdt|btc|биткоин|bitcoin|crypto).{0,40}(вперед|сначала|предоплат|upfront|first))|((вперед|сначала|предоплат|upfront|pay first).{0,40}(крипт|usdt|btc|биткоин|bitcoin|crypto))`)},
	{"impossible_guarantee", 30, regexp.MustCompile(
		`(?i)(100\s?%(\s|-)?(гаранти|guarantee)|стопроцентн\w* гаранти|guaranteed? 100|гарантирую результат)`)},
	{"hard_pressure", 16, ultimatumRe},
	{"embassy_claim", 30, regexp.MustCompile(
		`(?i)(связи в посольстве|свои люди в посольстве|знаком\w* в консульстве|contacts? (in|at) the embassy|friends (in|at) the embassy|inside the consulate)`)},
	{"fee_salary_confusion", 12, regexp.MustCompile(
		`(?i)((комисси|наша ставка|our fee).{0,30}(зарплат|salary))|((зарплат|salary).{0,30}(комисси|наша ставка|our fee))`)},
	{"requisites_from_demand", 10, regexp.MustCompile(
		`(?i)(реквизиты из заявки|реквизиты из деманда|requisites from the demand|details from the demand letter)`)},
}

// DetectRedFlags returns all fraud indicators matched in the text,
// including the unrealistic-timeline composite.
func DetectRedFlags(text string) []RedFlag {
	if text == "" {
		return nil
	}
	var flags []RedFlag
	for _, r := range redFlagRules {
		if r.re.MatchString(text) {
			flags = append(flags, RedFlag{Name: r.name, Penalty: r.penalty})
		}
	}
	if UnrealisticTimeline(text) {
		flags = append(flags, RedFlag{Name: "unrealistic_timeline", Penalty: 12})
	}
	return flags
}

type greenFlagRule struct {
	name  string
	bonus int
	re    *regexp.Regexp
}

var greenFlagRules = []greenFlagRule{
	{"bank_payment", 2, regexp.MustCompile(`(?i)(банковск|по счету|безнал|bank transfer|by invoice|wire transfer)`)},
	{"mentions_website", 1, regexp.MustCompile(`(?i)(наш сайт|на сайте|our website|on the site)`)},
	{"mentions_demand", 1, regexp.MustCompile(`(?i)(заявк|деманд|demand)`)},
	{"mentions_contract", 2, regexp.MustCompile(`(?i)(договор|контракт|contract)`)},
	{"single_candidate_test", 2, regexp.MustCompile(`(?i)(одного кандидата|тестов\w* кандидат|попробу\w* с одного|one candidate|trial candidate|start with one)`)},
}

// GreenFlagBonus sums the trust-building mention bonuses.
func GreenFlagBonus(text string) int {
	if text == "" {
		return 0
	}
	bonus := 0
	for _, r := range greenFlagRules {
		if r.re.MatchString(text) {
			bonus += r.bonus
		}
	}
	return bonus
}

var postponementRe = regexp.MustCompile(
	`(?i)(давайте позже|перенесем|отложим|не сейчас|let's postpone|maybe later|some other time)`)

// HasPostponement detects ambiguous stalling. It never moves the score;
// the objection generator treats it as a stall trigger.
func HasPostponement(text string) bool {
	return postponementRe.MatchString(text)
}

var personalQuestionRe = regexp.MustCompile(
	`(?i)(сколько (вам|тебе) лет|есть ли .{0,20}(семья|дети)|у вас есть (семья|дети|хобби)|чем увлекаетесь|как пров[оё]дите выходные|how old are you|do you have (a family|kids|children|hobbies)|what do you do for fun|what are your hobbies)`)

// IsPersonalQuestion detects family/age/hobby questions. Used both
// per-message and as a running per-conversation total.
func IsPersonalQuestion(text string) bool {
	return personalQuestionRe.MatchString(text)
}

var courtesyRe = regexp.MustCompile(
	`(?i)(пожалуйста|будьте добры|спасибо|благодарю|всего доброго|хорошего дня|please|thank you|thanks|have a good day|appreciate it)`)

// HasCourtesy detects politeness markers. The scorer gates the bonus by
// a cooldown counted in turns; wall-clock timestamps are not trusted.
func HasCourtesy(text string) bool {
	return courtesyRe.MatchString(text)
}

// Informational topics for the well-rounded-dialogue micro-credit.
var topicRules = map[string]*regexp.Regexp{
	"vacancy":   businessGroups[0],
	"salary":    businessGroups[1],
	"housing":   businessGroups[2],
	"schedule":  businessGroups[3],
	"location":  businessGroups[4],
	"documents": regexp.MustCompile(`(?i)(документ|виз|патент|разрешени|document|visa|permit)`),
	"website":   regexp.MustCompile(`(?i)(сайт|website|site)`),
}

// Topics returns the distinct informational topics mentioned in text.
func Topics(text string) []string {
	if text == "" {
		return nil
	}
	var found []string
	for _, name := range []string{"vacancy", "salary", "housing", "schedule", "location", "documents", "website"} {
		if topicRules[name].MatchString(text) {
			found = append(found, name)
		}
	}
	return found
}

var paymentMentionRe = regexp.MustCompile(
	`(?i)(оплат|счет на|инвойс|предоплат|перевод|payment|invoice|pay us|transfer the)`)

// HasPaymentMention flags payment/invoice talk, used by the
// early-payment-pressure credit and the policy layer.
func HasPaymentMention(text string) bool {
	return paymentMentionRe.MatchString(text)
}

// HandlingLevel grades objection-handling quality in a manager message.
type HandlingLevel int

const (
	HandlingNone HandlingLevel = iota
	HandlingWeak
	HandlingStrong
)

var handlingMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(понимаю ваши|понимаю, что|i understand your|that's a fair concern)`),
	regexp.MustCompile(`(?i)(окупится|ценность|сэкономит|value|pays for itself|worth the)`),
	regexp.MustCompile(`(?i)(начать с одного|небольшой шаг|без риска|start small|start with one|low risk)`),
	regexp.MustCompile(`(?i)(партнерств|долгосрочн|вместе|partnership|long[- ]term|together)`),
	regexp.MustCompile(`(?i)(не тороплю|подумайте|решать вам|no pressure|take your time|your decision)`),
}

// ObjectionHandling counts handling markers: 0 none, 1 weak, 2+ strong.
func ObjectionHandling(text string) HandlingLevel {
	if text == "" {
		return HandlingNone
	}
	count := 0
	for _, re := range handlingMarkers {
		if re.MatchString(text) {
			count++
		}
	}
	switch {
	case count >= 2:
		return HandlingStrong
	case count == 1:
		return HandlingWeak
	default:
		return HandlingNone
	}
}

var channelPitchRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(быстрее|моментально|instant|faster)`),
	regexp.MustCompile(`(?i)(без комиссии|дешевле|no fees?|cheaper)`),
	regexp.MustCompile(`(?i)(скидк|discount|bonus if)`),
}

// ChannelPitchStrength measures how hard the manager pitches an
// alternate payment channel, in [0,1].
func ChannelPitchStrength(text string) float64 {
	if text == "" {
		return 0
	}
	s := 0.0
	for _, re := range channelPitchRes {
		if re.MatchString(text) {
			s += 0.34
		}
	}
	if s > 1 {
		s = 1
	}
	return s
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			return 0
		}
	}
	return n
}
