package bot

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"volunteerbot/internal/config"

	"github.com/bwmarrin/discordgo"
)

// In-memory stand-in for the chat platform
type fakeDiscord struct {
	mu sync.Mutex

	guilds      map[string]*discordgo.Guild
	roles       map[string][]*discordgo.Role
	channels    map[string][]*discordgo.Channel
	memberRoles map[string][]string
	sent        map[string][]*discordgo.MessageSend
	responses   []*discordgo.InteractionResponse
	followups   []*discordgo.WebhookParams

	rolesCreated    int
	channelsCreated int
	nextId          int

	dmErr            error
	sendErr          map[string]error
	roleCreateErr    error
	channelCreateErr error
	roleAddErr       error
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		guilds:      map[string]*discordgo.Guild{},
		roles:       map[string][]*discordgo.Role{},
		channels:    map[string][]*discordgo.Channel{},
		memberRoles: map[string][]string{},
		sent:        map[string][]*discordgo.MessageSend{},
		sendErr:     map[string]error{},
	}
}

func forbidden() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions, Message: "Missing Permissions"},
	}
}

func (f *fakeDiscord) id(prefix string) string {
	f.nextId++
	return fmt.Sprintf("%s-%d", prefix, f.nextId)
}

func (f *fakeDiscord) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeDiscord) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{ID: f.id("msg")}, nil
}

func (f *fakeDiscord) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[channelID]; err != nil {
		return nil, err
	}
	f.sent[channelID] = append(f.sent[channelID], data)
	return &discordgo.Message{ID: f.id("msg"), ChannelID: channelID}, nil
}

func (f *fakeDiscord) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeDiscord) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	guild, ok := f.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	return guild, nil
}

func (f *fakeDiscord) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Role(nil), f.roles[guildID]...), nil
}

func (f *fakeDiscord) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleCreateErr != nil {
		return nil, f.roleCreateErr
	}
	role := &discordgo.Role{ID: f.id("role"), Name: data.Name}
	f.roles[guildID] = append(f.roles[guildID], role)
	f.rolesCreated++
	return role, nil
}

func (f *fakeDiscord) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Channel(nil), f.channels[guildID]...), nil
}

func (f *fakeDiscord) GuildChannelCreate(guildID string, name string, ctype discordgo.ChannelType, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channelCreateErr != nil {
		return nil, f.channelCreateErr
	}
	channel := &discordgo.Channel{ID: f.id("channel"), GuildID: guildID, Name: name, Type: ctype}
	f.channels[guildID] = append(f.channels[guildID], channel)
	f.channelsCreated++
	return channel, nil
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID string, userID string, roleID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleAddErr != nil {
		return f.roleAddErr
	}
	key := guildID + "/" + userID
	f.memberRoles[key] = append(f.memberRoles[key], roleID)
	return nil
}

func (f *fakeDiscord) lastContent(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		t.Fatalf("no interaction responses recorded")
	}
	last := f.responses[len(f.responses)-1]
	if last.Data == nil {
		t.Fatalf("last response has no data")
	}
	return last.Data.Content
}

func (f *fakeDiscord) roleNamed(guildID string, name string) *discordgo.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range f.roles[guildID] {
		if role.Name == name {
			return role
		}
	}
	return nil
}

func (f *fakeDiscord) channelNamed(guildID string, name string) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, channel := range f.channels[guildID] {
		if channel.Name == name {
			return channel
		}
	}
	return nil
}

var testNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestBot(t *testing.T, schools ...string) *Bot {
	t.Helper()
	return newTestBotAt(t, filepath.Join(t.TempDir(), "volunteers.json"), schools...)
}

func newTestBotAt(t *testing.T, dataPath string, schools ...string) *Bot {
	t.Helper()
	if len(schools) == 0 {
		schools = []string{"A", "B"}
	}
	bot, err := CreateBot(config.Config{
		Token:          "token",
		RoleName:       "Volunteer",
		LogChannelName: "volunteer-log",
		Schools:        schools,
		DataPath:       dataPath,
	})
	if err != nil {
		t.Fatalf("CreateBot() err=%v", err)
	}
	bot.now = func() time.Time { return testNow }
	return bot
}

func testUser(id string) *discordgo.User {
	return &discordgo.User{ID: id, Username: id, GlobalName: "Name " + id, Discriminator: "0"}
}

func guildInteraction(guildID string, userID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      "interaction-" + userID,
		GuildID: guildID,
		Member:  &discordgo.Member{User: testUser(userID)},
	}
}

func directInteraction(userID string) *discordgo.Interaction {
	return &discordgo.Interaction{ID: "interaction-" + userID, User: testUser(userID)}
}

func asCommand(interaction *discordgo.Interaction, name string) *discordgo.Interaction {
	interaction.Type = discordgo.InteractionApplicationCommand
	interaction.Data = discordgo.ApplicationCommandInteractionData{Name: name}
	return interaction
}

func asSelect(interaction *discordgo.Interaction, values ...string) *discordgo.Interaction {
	interaction.Type = discordgo.InteractionMessageComponent
	interaction.Data = discordgo.MessageComponentInteractionData{CustomID: CUSTOM_ID_SCHOOL_SELECT, Values: values}
	return interaction
}

func asButton(interaction *discordgo.Interaction, customID string) *discordgo.Interaction {
	interaction.Type = discordgo.InteractionMessageComponent
	interaction.Data = discordgo.MessageComponentInteractionData{CustomID: customID}
	return interaction
}

func asDetails(interaction *discordgo.Interaction, location string, availability string) *discordgo.Interaction {
	interaction.Type = discordgo.InteractionModalSubmit
	interaction.Data = discordgo.ModalSubmitInteractionData{
		CustomID: CUSTOM_ID_DETAILS_MODAL,
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: CUSTOM_ID_INPUT_LOCATION, Value: location},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: CUSTOM_ID_INPUT_AVAILABILITY, Value: availability},
			}},
		},
	}
	return interaction
}

// Drive a member through school selection and the details form
func completeForm(bot *Bot, discord *fakeDiscord, guildID string, userID string, school string, location string, availability string) {
	bot.Receive(discord, asSelect(guildInteraction(guildID, userID), school))
	bot.Receive(discord, asDetails(guildInteraction(guildID, userID), location, availability))
}
