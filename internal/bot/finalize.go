package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Commit the answers of a member: record them, make sure the role and the
// log channel exist, assign the role, post the summary, write the store
// and close the session.
// Role and channel steps are best effort. Their failures are reported to the
// member but the record stays committed
func (bot *Bot) finish(discord Discord, actor Actor) []Response {

	session, err := bot.sessions.Claim(actor.UserId)
	var incomplete *IncompleteError
	switch {
	case errors.As(err, &incomplete):
		log.Info().Msg(fmt.Sprintf("Member %s tried to finish with missing fields %v", actor.UserId, incomplete.Missing))
		return []Response{MissingFields(incomplete.Missing)}
	case errors.Is(err, ErrSessionFinalizing):
		log.Warn().Msg(fmt.Sprintf("Member %s is already being finalized", actor.UserId))
		return []Response{AlreadyFinalizing()}
	case err != nil:
		log.Error().Err(err).Msg(fmt.Sprintf("Could not claim session of member %s", actor.UserId))
		return []Response{NotSaved(nil)}
	}
	record := VolunteerRecord{
		UserId:       actor.UserId,
		UserTag:      actor.DisplayName,
		School:       session.School,
		Location:     session.Location,
		Availability: session.Availability,
		Timestamp:    bot.now().UTC().Format(time.RFC3339),
		SubmissionId: uuid.NewString(),
	}
	bot.database.SetVolunteer(record)

	problems := bot.guildSideEffects(discord, bot.guildFor(actor, session), actor, record)

	if err := bot.database.Commit(); err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not write volunteers to %s", bot.database.Filename()))
		// Keep the answers so that the member can finish again
		bot.sessions.Release(actor.UserId)
		return []Response{NotSaved(problems)}
	}
	bot.sessions.Delete(actor.UserId)
	log.Info().Msg(fmt.Sprintf("Volunteer %s recorded (submission %s)", actor.UserId, record.SubmissionId))

	if len(problems) > 0 {
		return []Response{CompletedWithProblems(problems)}
	}
	return []Response{Completed(bot.roleName)}
}

// Role and log channel, in that order. Returns what went wrong, for the member
func (bot *Bot) guildSideEffects(discord Discord, guildid string, actor Actor, record VolunteerRecord) []string {

	if guildid == "" {
		log.Warn().Msg(fmt.Sprintf("No guild known for member %s, skipping role and log", actor.UserId))
		return []string{"I could not tell which server you are onboarding for, so no role was assigned"}
	}

	problems := []string{}
	role, err := ensureRole(discord, guildid, bot.roleName)
	if err != nil {
		logFailure(err, "Could not ensure volunteer role")
		problems = append(problems, describeFailure("create the role", bot.roleName, err))
	}
	channel, err := ensureChannel(discord, guildid, bot.logChannelName)
	if err != nil {
		logFailure(err, "Could not ensure log channel")
		problems = append(problems, describeFailure("create the channel", bot.logChannelName, err))
	}
	if role != nil {
		if err := assignRole(discord, guildid, actor, role); err != nil {
			logFailure(err, "Could not assign volunteer role")
			problems = append(problems, describeFailure("assign the role", bot.roleName, err))
		}
	}
	if channel != nil {
		if err := logSubmission(discord, channel, record, actor.Mention); err != nil {
			logFailure(err, "Could not log submission")
			problems = append(problems, describeFailure("post in the channel", bot.logChannelName, err))
		}
	}
	return problems
}

// The guild of the interaction, else where onboarding started, else the
// configured one
func (bot *Bot) guildFor(actor Actor, session Session) string {
	if actor.GuildId != "" {
		return actor.GuildId
	}
	if session.GuildId != "" {
		return session.GuildId
	}
	return bot.guildId
}

func logFailure(err error, message string) {
	if isForbidden(err) {
		log.Warn().Err(err).Msg(message)
		return
	}
	log.Error().Err(err).Msg(message)
}
