package telegram

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/dto"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
)

// command is a parsed "/name@bot arg1 arg2" message
type command struct {
	Name string
	// Addressee is the bot named after '@', empty when the command is unaddressed
	Addressee string
	Args      []string
}

// parseCommand splits a command message. ok is false for anything that does
// not start with a slash followed by a name.
func parseCommand(text string) (cmd command, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return command{}, false
	}

	name, addressee, _ := strings.Cut(fields[0][1:], "@")
	if name == "" {
		return command{}, false
	}

	return command{
		Name:      strings.ToLower(name),
		Addressee: addressee,
		Args:      fields[1:],
	}, true
}

// addressedTo reports whether the command is for the bot with the given username
func (c command) addressedTo(username string) bool {
	return c.Addressee == "" || strings.EqualFold(c.Addressee, username)
}

func userIdentity(u *models.User) entities.Identity {
	return entities.Identity{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		IsBot:       u.IsBot,
	}
}

func chatIdentity(c *models.Chat) entities.Identity {
	name := c.Title
	if name == "" {
		name = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	return entities.Identity{
		ID:          c.ID,
		Username:    c.Username,
		DisplayName: name,
	}
}

// senderOf resolves who a message is from. A channel or chat posting as
// itself wins over the user field, which then holds a placeholder account.
func senderOf(msg *models.Message) *entities.Identity {
	switch {
	case msg.SenderChat != nil:
		identity := chatIdentity(msg.SenderChat)
		return &identity
	case msg.From != nil:
		identity := userIdentity(msg.From)
		return &identity
	default:
		return nil
	}
}

// messageText returns the text of a message, or the caption of a media message
func messageText(msg *models.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func inboundMessage(msg *models.Message) *dto.InboundMessage {
	return &dto.InboundMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Sender:    senderOf(msg),
		Text:      messageText(msg),
	}
}

// commandRequest builds a request for cmd. The issuer is the sender of the
// message; the reply target is the sender of the replied-to message.
func commandRequest(msg *models.Message, cmd command) *dto.CommandRequest {
	req := &dto.CommandRequest{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Args:      cmd.Args,
	}
	if issuer := senderOf(msg); issuer != nil {
		req.Issuer = *issuer
	}
	if msg.ReplyToMessage != nil {
		req.ReplyTo = senderOf(msg.ReplyToMessage)
	}
	return req
}

func membersJoined(msg *models.Message) *dto.MembersJoinedRequest {
	members := make([]entities.Identity, 0, len(msg.NewChatMembers))
	for i := range msg.NewChatMembers {
		members = append(members, userIdentity(&msg.NewChatMembers[i]))
	}
	return &dto.MembersJoinedRequest{
		ChatID:  msg.Chat.ID,
		Members: members,
	}
}

// callbackRequest extracts a button press. ok is false when the message
// carrying the buttons is not available.
func callbackRequest(q *models.CallbackQuery) (req *dto.CallbackRequest, ok bool) {
	req = &dto.CallbackRequest{
		CallbackID: q.ID,
		Issuer:     userIdentity(&q.From),
		Data:       q.Data,
	}

	switch {
	case q.Message.Message != nil:
		req.ChatID = q.Message.Message.Chat.ID
		req.MessageID = q.Message.Message.ID
	case q.Message.InaccessibleMessage != nil:
		req.ChatID = q.Message.InaccessibleMessage.Chat.ID
		req.MessageID = q.Message.InaccessibleMessage.MessageID
	default:
		return req, false
	}
	return req, true
}
