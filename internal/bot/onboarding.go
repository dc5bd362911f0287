package bot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// A new member joined: open a session and send the prompt by direct message.
// If the DM cannot be delivered, point the member to the slash command in
// the guild's system channel or the first text channel that accepts it
func (bot *Bot) memberJoined(discord Discord, guildid string, guildName string, user *discordgo.User) {

	if user.Bot {
		log.Debug().Msg(fmt.Sprintf("Ignoring bot %s joining guild %s", user.ID, guildid))
		return
	}
	bot.sessions.Begin(user.ID, guildid)
	log.Info().Msg(fmt.Sprintf("Member %s joined guild %s, starting onboarding", user.ID, guildid))

	err := bot.sendDirectPrompt(discord, user, guildName)
	if err == nil {
		return
	}
	log.Warn().Err(err).Msg(fmt.Sprintf("Could not DM member %s", user.ID))

	channelids, err := fallbackChannels(discord, guildid)
	if err != nil {
		log.Warn().Err(err).Msg("No channel to post the onboarding fallback to")
		return
	}
	// The bot may not be allowed to write everywhere, keep trying down the list
	for _, channelid := range channelids {
		err := DirectMessageClosed(user.Mention()).Send(discord, channelid)
		if err == nil {
			log.Info().Msg(fmt.Sprintf("Posted onboarding fallback for %s to channel %s", user.ID, channelid))
			return
		}
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not post onboarding fallback to channel %s", channelid))
	}
	log.Error().Msg(fmt.Sprintf("No channel of guild %s accepted the onboarding fallback for %s", guildid, user.ID))
}

func (bot *Bot) sendDirectPrompt(discord Discord, user *discordgo.User, guildName string) error {
	channel, err := discord.UserChannelCreate(user.ID)
	if err != nil {
		return fmt.Errorf("could not open DM channel: %w", err)
	}
	return sendResponses(discord, channel.ID, []Response{
		Welcome(guildName, user.Mention()),
		OnboardingPrompt(bot.schools),
	})
}

// Explicit start, also the fallback when the welcome DM failed
func (bot *Bot) begin(actor Actor) []Response {
	session := bot.sessions.Begin(actor.UserId, actor.GuildId)
	log.Info().Msg(fmt.Sprintf("Onboarding started by member %s (%s)", actor.UserId, session.State))
	return []Response{OnboardingPrompt(bot.schools)}
}

func (bot *Bot) selectSchool(actor Actor, event SchoolChosen) []Response {
	session, err := bot.sessions.Apply(actor.UserId, actor.GuildId, event)
	if err != nil {
		return bot.sessionError(actor, err)
	}
	log.Debug().Msg(fmt.Sprintf("Member %s chose school %s (%s)", actor.UserId, event.School, session.State))
	return []Response{SchoolSet(event.School)}
}

func (bot *Bot) openDetails(actor Actor) []Response {
	log.Debug().Msg(fmt.Sprintf("Opening details form for member %s", actor.UserId))
	return []Response{DetailsForm()}
}

func (bot *Bot) submitDetails(actor Actor, event DetailsSubmitted) []Response {
	session, err := bot.sessions.Apply(actor.UserId, actor.GuildId, event)
	if err != nil {
		return bot.sessionError(actor, err)
	}
	log.Debug().Msg(fmt.Sprintf("Member %s submitted details (%s)", actor.UserId, session.State))
	return []Response{DetailsCaptured(session)}
}

func (bot *Bot) sessionError(actor Actor, err error) []Response {
	if errors.Is(err, ErrSessionFinalized) {
		log.Debug().Msg(fmt.Sprintf("Member %s interacted while being finalized", actor.UserId))
		return []Response{SessionClosed()}
	}
	log.Error().Err(err).Msg(fmt.Sprintf("Unexpected session error for member %s", actor.UserId))
	return []Response{InputNotValid(err.Error())}
}
