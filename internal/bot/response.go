package bot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var errModalOutsideInteraction = errors.New("a form can only be opened in reply to an interaction")

type ResponseString struct {
	string
}

type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// A message with interactive controls attached
type ResponsePrompt struct {
	content    string
	components []discordgo.MessageComponent
}

type ResponseModal struct {
	customId   string
	title      string
	components []discordgo.MessageComponent
}

// Replies to the member acting on an interaction are only visible to them.
// Send posts to a channel instead
type Response interface {
	Respond(discord Discord, interaction *discordgo.Interaction) error
	Followup(discord Discord, interaction *discordgo.Interaction) error
	Send(discord Discord, channelid string) error
}

func (response ResponseString) Respond(discord Discord, interaction *discordgo.Interaction) error {
	return respondMessage(discord, interaction, &discordgo.InteractionResponseData{Content: response.string})
}

func (response ResponseString) Followup(discord Discord, interaction *discordgo.Interaction) error {
	return followupMessage(discord, interaction, &discordgo.WebhookParams{Content: response.string})
}

func (response ResponseString) Send(discord Discord, channelid string) error {
	_, err := discord.ChannelMessageSendComplex(channelid, &discordgo.MessageSend{Content: response.string})
	return err
}

func (response ResponseEmbed) Respond(discord Discord, interaction *discordgo.Interaction) error {
	return respondMessage(discord, interaction, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{&response.MessageEmbed}})
}

func (response ResponseEmbed) Followup(discord Discord, interaction *discordgo.Interaction) error {
	return followupMessage(discord, interaction, &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{&response.MessageEmbed}})
}

func (response ResponseEmbed) Send(discord Discord, channelid string) error {
	_, err := discord.ChannelMessageSendComplex(channelid, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&response.MessageEmbed}})
	return err
}

func (response ResponsePrompt) Respond(discord Discord, interaction *discordgo.Interaction) error {
	return respondMessage(discord, interaction, &discordgo.InteractionResponseData{Content: response.content, Components: response.components})
}

func (response ResponsePrompt) Followup(discord Discord, interaction *discordgo.Interaction) error {
	return followupMessage(discord, interaction, &discordgo.WebhookParams{Content: response.content, Components: response.components})
}

func (response ResponsePrompt) Send(discord Discord, channelid string) error {
	_, err := discord.ChannelMessageSendComplex(channelid, &discordgo.MessageSend{Content: response.content, Components: response.components})
	return err
}

func (response ResponseModal) Respond(discord Discord, interaction *discordgo.Interaction) error {
	return discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   response.customId,
			Title:      response.title,
			Components: response.components,
		},
	})
}

func (response ResponseModal) Followup(Discord, *discordgo.Interaction) error {
	return errModalOutsideInteraction
}

func (response ResponseModal) Send(Discord, string) error {
	return errModalOutsideInteraction
}

func respondMessage(discord Discord, interaction *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	data.Flags = discordgo.MessageFlagsEphemeral
	return discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func followupMessage(discord Discord, interaction *discordgo.Interaction, data *discordgo.WebhookParams) error {
	data.Flags = discordgo.MessageFlagsEphemeral
	_, err := discord.FollowupMessageCreate(interaction, true, data)
	return err
}

// The first response answers the interaction, the rest are follow-ups
func respond(discord Discord, interaction *discordgo.Interaction, responses []Response) {
	for i, response := range responses {
		var err error
		if i == 0 {
			err = response.Respond(discord, interaction)
		} else {
			err = response.Followup(discord, interaction)
		}
		if err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not answer interaction %s", interaction.ID))
		}
	}
}

func sendResponses(discord Discord, channelid string, responses []Response) error {
	for _, response := range responses {
		if err := response.Send(discord, channelid); err != nil {
			return err
		}
	}
	return nil
}
