package locales

import (
	"strconv"
	"strings"
)

// DefaultLanguage is used for unknown users and unknown language codes.
const DefaultLanguage = "uz_latin"

// Languages supported by the bot.
var Languages = []string{"uz_latin", "uz_cyrillic", "ru"}

// Text returns the localized string for key, falling back to uz_latin and
// finally to the key itself so a missing translation is visible, not fatal.
func Text(language, key string) string {
	table, ok := texts[language]
	if !ok {
		table = texts[DefaultLanguage]
	}
	if s, ok := table[key]; ok {
		return s
	}
	if s, ok := texts[DefaultLanguage][key]; ok {
		return s
	}
	return key
}

// Textf returns the localized string with {name} placeholders substituted.
// Args are name/value pairs: Textf(lang, "calendar_header", "goal", "100 000").
func Textf(language, key string, args ...string) string {
	s := Text(language, key)
	for i := 0; i+1 < len(args); i += 2 {
		s = strings.ReplaceAll(s, "{"+args[i]+"}", args[i+1])
	}
	return s
}

// FormatNumber renders an amount with spaces as thousands separators,
// the way sums are written in so'm.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatFloat renders a percentage with the given number of decimals,
// dropping a trailing ".0" the way the stats screens show whole numbers.
func FormatFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

var texts = map[string]map[string]string{
	"uz_latin": {
		// Dua texts
		"dua_button":        "Duo qoldirish",
		"dua_name_question": "Qaysi nomdan duo yubormoqchisiz?",
		"dua_my_name":       "Mening ismim",
		"dua_anonymous":     "Anonim yuborish",
		"dua_enter_text":    "Duongizni yozing:",
		"dua_sent_success":  "Duoyingiz muvaffaqiyatli yuborildi!",
		"dua_limit_user":    "Siz bu Juma uchun allaqachon 2 ta duo yuborganingiz. Keyingi Jumada yana yuborishingiz mumkin.",
		"dua_limit_total":   "Bu Juma uchun barcha duolar limiti tugadi (maksimal 20 ta). Keyingi Jumaga duo qoldiring.",
		"dua_limit_warning": "Ogohlantirish: Bu Juma uchun {total}/20 duo to'ldi. Sizning duoyingiz limitdan oshishi mumkin.",
		"dua_send_now":      "Hozir yuborish",
		"dua_send_later":    "Keyinroq qoldirish",
		"dua_too_short":     "Duo juda qisqa. Kamida 5 ta belgi kiriting.",
		"dua_too_long":      "Duo juda uzun. Maksimal 500 ta belgi.",

		// Common buttons
		"back_button": "Orqaga",
		"main_menu":   "Asosiy menyu",
		"yes":         "Ha",
		"no":          "Yo'q",

		// Onboarding
		"onboarding_welcome":    "Assalomu alaykum! Sadaka marafoniga xush kelibsiz!\n\nBu bot sizga har oy sadaka berish odatini shakllantirishga yordam beradi.",
		"ask_daily_plan":        "Kunlik sadaka rejangizni kiriting (minimal 1000 so'm):",
		"add_later":             "Keyinroq qo'shish",
		"daily_plan_too_small":  "Kunlik reja kamida 1000 so'm bo'lishi kerak.",
		"daily_plan_too_large":  "Kiritilgan summa juda katta. Iltimos, tekshirib qayta kiriting.",
		"daily_plan_accepted":   "Rahmat! Sizning kunlik rejangiz: {daily_plan} so'm\nMarafon oxirigacha prognoz: {total_projected} so'm\nMarafon maqsadiga hissangiz: {contribution_percent}%",
		"invalid_number":        "Iltimos, to'g'ri raqam kiriting.",
		"ask_display_name":      "Qaysi nom ostida qatnashmoqchisiz?",
		"keep_my_name":          "Ismimni saqlash",
		"participate_anonymous": "Anonim qatnashish",
		"enter_pseudonym":       "Taxallusingizni kiriting:",
		"name_too_short":        "Ism juda qisqa. Kamida 2 ta belgi kiriting.",
		"name_too_long":         "Ism juda uzun. Maksimal 50 ta belgi.",
		"name_invalid_chars":    "Ismda taqiqlangan belgilar bor. Boshqa ism kiriting.",
		"welcome_to_marathon":   "Siz marafonga muvaffaqiyatli qo'shildingiz!",
		"waiting_for_marathon":  "Hozircha faol marafon yo'q. Yangi marafon boshlanishi kutilmoqda.",
		"new_marathon_started":  "🎉 Yangi marafon boshlandi!\n\nMaqsad: {goal} so'm\nDavr: {start_date} - {end_date}\n\nMarafonga qo'shiling va kunlik rejangizni bajaring!",

		// Marathon
		"marathon_stats":           "Marafon statistikasi",
		"no_active_marathon":       "Hozirda faol marafon yo'q.",
		"marathon_stats_text":      "📊 Marafon statistikasi\n\n🌍 Umumiy:\n🎯 Maqsad: {goal} so'm\n💰 Yig'ildi: {current} so'm\n📈 Bajarildi: {percent}%\n👥 Qatnashchilar: {participants_count}\n\n👤 Sizning natijalaringiz:\n💰 Jami xayriya: {user_contribution} so'm\n📊 Rejaga nisbatan: {user_plan_percent}%\n🏆 Reytingdagi o'rningiz: {rank}-o'rin\n✅ Bajarilgan kunlar: {completed_days}\n❌ Qoldirilgan kunlar: {missed_days}\n🤝 Umumiy hissangiz: {global_contribution_percent}%",
		"view_calendar":            "Kalendar ko'rish",
		"calendar_header":          "Maqsad: {goal} so'm\nQolgan: {remaining} so'm\nBajarildi: {percent}%",
		"day_marked_completed":     "Kun bajarilgan deb belgilandi!",
		"day_marked_not_completed": "Yaxshi, ertaga harakat qiling!",

		// Reminders
		"morning_reminder":    "Bugun sadaka berishni va'da qilasizmi?",
		"afternoon_reminder":  "Bugungi kunlik rejani bajarishga hali vaqt bor!",
		"evening_reminder":    "Bugungi kunlik rejani bajardingizmi?",
		"yes_completed":       "Ha, bajardim",
		"no_not_completed":    "Yo'q, bugun bajara olmadim",
		"ask_daily_amount":    "Bugun qancha sadaka qildingiz? (so'mda kiriting)",
		"daily_stats_message": "📊 Bugungi hisobot\n\n👤 Siz:\n✅ Reja bajarildi: {status}\n💰 Sadaka: {user_amount} so'm\n\n🌍 Umumiy:\n👥 Qatnashchilar: {participants}\n💰 Jami yig'ildi: {total_amount} so'm\n📈 Kunlik progress: {day_progress}%",

		// Settings
		"settings":         "Sozlamalar",
		"settings_menu":    "Sozlamalar",
		"change_language":  "Tilni o'zgartirish",
		"change_plan":      "Kunlik rejani o'zgartirish",
		"enter_new_plan":   "Yangi kunlik rejani kiriting (minimal 1000 so'm):",
		"plan_updated":     "Kunlik reja muvaffaqiyatli yangilandi!\n\nYangi reja: {daily_plan} so'm\nMarafon oxirigacha prognoz: {total_projected} so'm\nMarafon maqsadiga hissangiz: {contribution_percent}%",
		"language_changed": "Til muvaffaqiyatli o'zgartirildi!",

		// Admin
		"marathon_goal_too_small": "Marafon maqsadi kamida 10 000 so'm bo'lishi kerak.",
		"marathon_goal_too_large": "Kiritilgan maqsad juda katta. Iltimos, tekshirib qayta kiriting.",

		// Generic
		"something_went_wrong": "Xatolik yuz berdi. Iltimos, qayta urinib ko'ring.",
		"anonymous_name":       "Anonim",
	},
	"uz_cyrillic": {
		"dua_button":        "Дуо қолдириш",
		"dua_name_question": "Қайси номдан дуо юбормоқчисиз?",
		"dua_my_name":       "Менинг исмим",
		"dua_anonymous":     "Аноним юбориш",
		"dua_enter_text":    "Дуонгизни ёзинг:",
		"dua_sent_success":  "Дуойингиз муваффақиятли юборилди!",
		"dua_limit_user":    "Сиз бу Жума учун аллақачон 2 та дуо юборганингиз. Кейинги Жумада яна юборишингиз мумкин.",
		"dua_limit_total":   "Бу Жума учун барча дуолар лимити тугади (максимал 20 та). Кейинги Жумага дуо қолдиринг.",
		"dua_limit_warning": "Оғоҳлантириш: Бу Жума учун {total}/20 дуо тўлди. Сизнинг дуойингиз лимитдан ошиши мумкин.",
		"dua_send_now":      "Ҳозир юбориш",
		"dua_send_later":    "Кейинроқ қолдириш",
		"dua_too_short":     "Дуо жуда қисқа. Камида 5 та белги киритинг.",
		"dua_too_long":      "Дуо жуда узун. Максимал 500 та белги.",

		"back_button": "Орқага",
		"main_menu":   "Асосий меню",
		"yes":         "Ҳа",
		"no":          "Йўқ",

		"onboarding_welcome":    "Ассалому алайкум! Садака марафонига хуш келибсиз!\n\nБу бот сизга ҳар ой садака бериш одатини шакллантиришга ёрдам беради.",
		"ask_daily_plan":        "Кунлик садака режангизни киритинг (минимал 1000 сўм):",
		"add_later":             "Кейинроқ қўшиш",
		"daily_plan_too_small":  "Кунлик режа камида 1000 сўм бўлиши керак.",
		"daily_plan_too_large":  "Киритилган сумма жуда катта. Илтимос, текшириб қайта киритинг.",
		"daily_plan_accepted":   "Раҳмат! Сизнинг кунлик режангиз: {daily_plan} сўм\nМарафон охиригача прогноз: {total_projected} сўм\nМарафон мақсадига ҳиссангиз: {contribution_percent}%",
		"invalid_number":        "Илтимос, тўғри рақам киритинг.",
		"ask_display_name":      "Қайси ном остида қатнашмоқчисиз?",
		"keep_my_name":          "Исмимни сақлаш",
		"participate_anonymous": "Аноним қатнашиш",
		"enter_pseudonym":       "Тахаллусингизни киритинг:",
		"name_too_short":        "Исм жуда қисқа. Камида 2 та белги киритинг.",
		"name_too_long":         "Исм жуда узун. Максимал 50 та белги.",
		"name_invalid_chars":    "Исмда тақиқланган белгилар бор. Бошқа исм киритинг.",
		"welcome_to_marathon":   "Сиз марафонга муваффақиятли қўшилдингиз!",
		"waiting_for_marathon":  "Ҳозирча фаол марафон йўқ. Янги марафон бошланиши кутилмоқда.",
		"new_marathon_started":  "🎉 Янги марафон бошланди!\n\nМақсад: {goal} сўм\nДавр: {start_date} - {end_date}\n\nМарафонга қўшилинг ва кунлик режангизни бажаринг!",

		"marathon_stats":           "Марафон статистикаси",
		"no_active_marathon":       "Ҳозирда фаол марафон йўқ.",
		"marathon_stats_text":      "📊 Марафон статистикаси\n\n🌍 Умумий:\n🎯 Мақсад: {goal} сўм\n💰 Йиғилди: {current} сўм\n📈 Бажарилди: {percent}%\n👥 Қатнашчилар: {participants_count}\n\n👤 Сизнинг натижаларингиз:\n💰 Жами хайрия: {user_contribution} сўм\n📊 Режага нисбатан: {user_plan_percent}%\n🏆 Рейтингдаги ўрнингиз: {rank}-ўрин\n✅ Бажарилган кунлар: {completed_days}\n❌ Қолдирилган кунлар: {missed_days}\n🤝 Умумий ҳиссангиз: {global_contribution_percent}%",
		"view_calendar":            "Календар кўриш",
		"calendar_header":          "Мақсад: {goal} сўм\nҚолган: {remaining} сўм\nБажарилди: {percent}%",
		"day_marked_completed":     "Кун бажарилган деб белгиланди!",
		"day_marked_not_completed": "Яхши, эртага ҳаракат қилинг!",

		"morning_reminder":    "Бугун садака беришни ваъда қиласизми?",
		"afternoon_reminder":  "Бугунги кунлик режани бажаришга ҳали вақт бор!",
		"evening_reminder":    "Бугунги кунлик режани бажардингизми?",
		"yes_completed":       "Ҳа, бажардим",
		"no_not_completed":    "Йўқ, бугун бажара олмадим",
		"ask_daily_amount":    "Бугун қанча садака қилдингиз? (сўмда киритинг)",
		"daily_stats_message": "📊 Бугунги ҳисобот\n\n👤 Сиз:\n✅ Режа бажарилди: {status}\n💰 Садака: {user_amount} сўм\n\n🌍 Умумий:\n👥 Қатнашчилар: {participants}\n💰 Жами йиғилди: {total_amount} сўм\n📈 Кунлик прогресс: {day_progress}%",

		"settings":         "Созламалар",
		"settings_menu":    "Созламалар",
		"change_language":  "Тилни ўзгартириш",
		"change_plan":      "Кунлик режани ўзгартириш",
		"enter_new_plan":   "Янги кунлик режани киритинг (минимал 1000 сўм):",
		"plan_updated":     "Кунлик режа муваффақиятли янгиланди!\n\nЯнги режа: {daily_plan} сўм\nМарафон охиригача прогноз: {total_projected} сўм\nМарафон мақсадига ҳиссангиз: {contribution_percent}%",
		"language_changed": "Тил муваффақиятли ўзгартирилди!",

		"marathon_goal_too_small": "Марафон мақсади камида 10 000 сўм бўлиши керак.",
		"marathon_goal_too_large": "Киритилган мақсад жуда катта. Илтимос, текшириб қайта киритинг.",

		"something_went_wrong": "Хатолик юз берди. Илтимос, қайта уриниб кўринг.",
		"anonymous_name":       "Аноним",
	},
	"ru": {
		"dua_button":        "Оставить дуа",
		"dua_name_question": "От какого имени отправить дуа?",
		"dua_my_name":       "Моё имя",
		"dua_anonymous":     "Отправить анонимно",
		"dua_enter_text":    "Введите текст дуа:",
		"dua_sent_success":  "Ваша дуа успешно отправлена!",
		"dua_limit_user":    "Вы уже отправили 2 дуа на эту Жума. Можете отправить снова на следующую Жума.",
		"dua_limit_total":   "Лимит дуа на эту Жума исчерпан (максимум 20). Оставьте дуа на следующую Жума.",
		"dua_limit_warning": "Предупреждение: На эту Жума уже {total}/20 дуа. Ваша дуа может превысить лимит.",
		"dua_send_now":      "Отправить сейчас",
		"dua_send_later":    "Оставить позже",
		"dua_too_short":     "Дуа слишком короткая. Введите не менее 5 символов.",
		"dua_too_long":      "Дуа слишком длинная. Максимум 500 символов.",

		"back_button": "Назад",
		"main_menu":   "Главное меню",
		"yes":         "Да",
		"no":          "Нет",

		"onboarding_welcome":    "Ассаляму алейкум! Добро пожаловать в марафон садака!\n\nЭтот бот поможет вам сформировать привычку ежемесячной садака.",
		"ask_daily_plan":        "Введите ваш дневной план садака (минимум 1000 сум):",
		"add_later":             "Добавить позже",
		"daily_plan_too_small":  "Дневной план должен быть не менее 1000 сум.",
		"daily_plan_too_large":  "Введённая сумма слишком велика. Проверьте и введите снова.",
		"daily_plan_accepted":   "Спасибо! Ваш дневной план: {daily_plan} сум\nПрогноз до конца марафона: {total_projected} сум\nВаш вклад в марафон: {contribution_percent}%",
		"invalid_number":        "Пожалуйста, введите корректное число.",
		"ask_display_name":      "Под каким именем вы хотите участвовать?",
		"keep_my_name":          "Оставить моё имя",
		"participate_anonymous": "Участвовать анонимно",
		"enter_pseudonym":       "Введите ваш псевдоним:",
		"name_too_short":        "Имя слишком короткое. Введите не менее 2 символов.",
		"name_too_long":         "Имя слишком длинное. Максимум 50 символов.",
		"name_invalid_chars":    "Имя содержит недопустимые символы. Введите другое имя.",
		"welcome_to_marathon":   "Вы успешно присоединились к марафону!",
		"waiting_for_marathon":  "Пока нет активного марафона. Ожидается начало нового марафона.",
		"new_marathon_started":  "🎉 Новый марафон начался!\n\nЦель: {goal} сум\nПериод: {start_date} - {end_date}\n\nПрисоединяйтесь к марафону и выполняйте свой дневной план!",

		"marathon_stats":           "Статистика марафона",
		"no_active_marathon":       "Сейчас нет активного марафона.",
		"marathon_stats_text":      "📊 Статистика марафона\n\n🌍 Общее:\n🎯 Цель: {goal} сум\n💰 Собрано: {current} сум\n📈 Выполнено: {percent}%\n👥 Участники: {participants_count}\n\n👤 Ваши результаты:\n💰 Общее пожертвование: {user_contribution} сум\n📊 Относительно плана: {user_plan_percent}%\n🏆 Место в рейтинге: {rank}-е\n✅ Выполнено дней: {completed_days}\n❌ Пропущено дней: {missed_days}\n🤝 Ваш общий вклад: {global_contribution_percent}%",
		"view_calendar":            "Посмотреть календарь",
		"calendar_header":          "Цель: {goal} сум\nОсталось: {remaining} сум\nВыполнено: {percent}%",
		"day_marked_completed":     "День отмечен как выполненный!",
		"day_marked_not_completed": "Хорошо, завтра попробуйте снова!",

		"morning_reminder":    "Вы обещали сегодня дать садака, чтобы приблизиться к цели?",
		"afternoon_reminder":  "Напоминаем, что ещё не поздно выполнить дневной план!",
		"evening_reminder":    "Вы выполнили дневной план?",
		"yes_completed":       "Да, выполнил",
		"no_not_completed":    "Нет, сегодня не смог",
		"ask_daily_amount":    "Сколько садака вы сегодня дали? (введите сумму)",
		"daily_stats_message": "📊 Отчет за сегодня\n\n👤 Вы:\n✅ План выполнен: {status}\n💰 Садака: {user_amount} сум\n\n🌍 Общее:\n👥 Участники: {participants}\n💰 Всего собрано: {total_amount} сум\n📈 Дневной прогресс: {day_progress}%",

		"settings":         "Настройки",
		"settings_menu":    "Настройки",
		"change_language":  "Сменить язык",
		"change_plan":      "Изменить дневной план",
		"enter_new_plan":   "Введите новый дневной план (минимум 1000 сум):",
		"plan_updated":     "Дневной план успешно обновлен!\n\nНовый план: {daily_plan} сум\nПрогноз до конца марафона: {total_projected} сум\nВаш вклад в марафон: {contribution_percent}%",
		"language_changed": "Язык успешно изменён!",

		"marathon_goal_too_small": "Цель марафона должна быть не менее 10 000 сум.",
		"marathon_goal_too_large": "Введённая цель слишком велика. Проверьте и введите снова.",

		"something_went_wrong": "Произошла ошибка. Пожалуйста, попробуйте ещё раз.",
		"anonymous_name":       "Аноним",
	},
}
