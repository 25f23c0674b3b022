package app

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (p *Processor) HandleStart(bot *tgbotapi.BotAPI, chatID int64) {
	p.send(bot, chatID, "Здравствуйте! Я бот учёта посещаемости. 📚\n\n"+
		"Просто напишите имя ребёнка и ситуацию:\n"+
		"• «Петя Иванов заболел»\n"+
		"• «Аня опоздает»\n"+
		"• «Максим едет на соревнования»\n"+
		"• «Даша сегодня не придёт»\n\n"+
		"💡 Подробности — /help")
}

func (p *Processor) HandleHelp(bot *tgbotapi.BotAPI, chatID int64) {
	p.send(bot, chatID, `📋 Как пользоваться ботом

Напишите имя ребёнка и ситуацию — остальное бот поймёт сам.

📝 Примеры:
• «Петя заболел» → отсутствие по болезни
• «Аня опоздает» → опоздание
• «Максим едет на олимпиаду» → отсутствие по уважительной причине
• «Даша уйдёт после четвёртого урока» → ранний уход
• «Соня не придёт с понедельника по среду» → период

✏️ Исправления и отмена:
• «исправьте: не отсутствие, а опоздание»
• «перенесите на завтра»
• «отмените, уже выздоровел»

📷 Документы:
• справку или заявление сфотографируйте и пришлите в этот чат
• фото привяжется к последнему несданному документу

🔹 Типы: отсутствие, опоздание, ранний уход
🔹 Причины: болезнь, уважительная, без уважительной причины

💡 Если даты нет — записываем на сегодня.`)
}
