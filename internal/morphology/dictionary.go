package morphology

import "strings"

// Russian is the default language. "ё" is folded to "е".
var Russian = &Language{
	Name:    "russian",
	Letters: "абвгдеёжзийклмнопрстуфхцчшщъыьэюя",
	fold:    strings.NewReplacer("ё", "е"),
	functionWords: buildDictionary(
		// conjunctions come first so "что" and "чем" keep the conjunction tag
		TagConjunction, `и а но да или либо что чтобы чтоб если когда хотя хоть потому поэтому
			также тоже зато однако будто словно как пока ибо причем притом нежели чем дабы
			коли кабы поскольку затем ежели`,
		TagPreposition, `без безо близ в во вместо вне для до за из изо к ко кроме между меж на над
			надо о об обо от ото перед передо пред по под подо при про ради с со сквозь среди у
			через чрез около возле вокруг после мимо вдоль внутри вследствие благодаря согласно
			навстречу напротив против посреди насчет ввиду вроде вопреки сверх подле позади
			впереди поперек спустя внутрь наподобие`,
		TagParticle, `не ни же ли бы б вот вон даже лишь только ведь уж разве неужели пусть пускай
			давай именно почти исключительно вряд едва авось мол дескать якобы таки`,
		TagInterjection, `ах ох эх ух ой ай увы ура ага эй ого фу тьфу браво алло ау ишь эге цыц
			брр бац хм гм`,
		TagPronoun, `я меня мне мной мною ты тебя тебе тобой тобою он его него ему нему им ним нем
			она ее нее ей ней ею нею оно мы нас нам нами вы вас вам вами они их них ими ними
			себя себе собой собою кто кого кому кем ком чего чему никто никого никому ничто
			ничего ничему некто нечто некого нечего`,
		TagPronounAdjective, `мой моя мое мои моего моей моему моим моих моими мою твой твоя твое
			твои твоего твоей твоему твоим твоих твоими твою свой своя свое свои своего своей
			своему своим своих своими свою наш наша наше наши нашего нашей нашему нашим наших
			нашими нашу ваш ваша ваше ваши вашего вашей вашему вашим ваших вашими вашу этот
			эта это эти этого этой этому этим этих этими эту тот та то те того той тому тем
			тех теми ту такой такая такое такие такого такой таких какой какая какое какие
			какого каких который которая которое которые которого которой которому которым
			которых которую чей чья чье чьи весь вся все всего всей всему всем всех всеми
			всю каждый каждая каждое каждые каждого каждой любой любая любое любые сам сама
			само сами самого самой самим самих иной иная иное иные некоторый некоторые никакой
			никакая никакие некий`,
	),
}

// English is an alternative language for English-language sites.
var English = &Language{
	Name:    "english",
	Letters: "abcdefghijklmnopqrstuvwxyz",
	functionWords: buildDictionary(
		TagConjunction, `and but or nor so yet because although though while whereas unless
			whether if than that once`,
		TagPreposition, `about above across after against along among around at before behind
			below beneath beside between beyond by down during except for from in inside into
			near of off on onto out outside over past since through throughout till to toward
			towards under underneath until unto up upon with within without via`,
		TagParticle, `not only even just`,
		TagInterjection, `oh ah wow hey oops ouch alas hooray hmm ugh`,
		TagPronoun, `i me you he him she her it we us they them myself yourself himself herself
			itself ourselves themselves who whom what which anybody anyone everybody everyone
			nobody nothing something someone somebody anything everything`,
		TagPronounAdjective, `the a an my your his its our their this these those each every
			some any all both either neither whose`,
	),
}

// buildDictionary takes alternating tag and whitespace-separated word lists.
// A word listed under several tags keeps the first one.
func buildDictionary(pairs ...any) map[string]Tag {
	dict := make(map[string]Tag)
	for i := 0; i+1 < len(pairs); i += 2 {
		tag := pairs[i].(Tag)
		for _, w := range strings.Fields(pairs[i+1].(string)) {
			if _, ok := dict[w]; !ok {
				dict[w] = tag
			}
		}
	}
	return dict
}
