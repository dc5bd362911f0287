package bot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Find a role by name, ignoring case, creating it if absent
func ensureRole(discord Discord, guildid string, roleName string) (*discordgo.Role, error) {

	roles, err := discord.GuildRoles(guildid)
	if err != nil {
		return nil, fmt.Errorf("could not list roles of guild %s: %w", guildid, err)
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, roleName) {
			return role, nil
		}
	}

	log.Info().Msg(fmt.Sprintf("Creating role %s in guild %s", roleName, guildid))
	role, err := discord.GuildRoleCreate(guildid, &discordgo.RoleParams{Name: roleName}, discordgo.WithAuditLogReason("Volunteer role for onboarding"))
	if err != nil {
		return nil, fmt.Errorf("could not create role %s in guild %s: %w", roleName, guildid, err)
	}
	return role, nil
}

// Find a text channel by name, ignoring case, creating it if absent
func ensureChannel(discord Discord, guildid string, channelName string) (*discordgo.Channel, error) {

	channels, err := discord.GuildChannels(guildid)
	if err != nil {
		return nil, fmt.Errorf("could not list channels of guild %s: %w", guildid, err)
	}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(channel.Name, channelName) {
			return channel, nil
		}
	}

	log.Info().Msg(fmt.Sprintf("Creating channel %s in guild %s", channelName, guildid))
	channel, err := discord.GuildChannelCreate(guildid, channelName, discordgo.ChannelTypeGuildText, discordgo.WithAuditLogReason("Volunteer log channel"))
	if err != nil {
		return nil, fmt.Errorf("could not create channel %s in guild %s: %w", channelName, guildid, err)
	}
	return channel, nil
}

// Give the role to the member unless they already hold it
func assignRole(discord Discord, guildid string, actor Actor, role *discordgo.Role) error {

	if slices.Contains(actor.RoleIds, role.ID) {
		log.Debug().Msg(fmt.Sprintf("Member %s already has role %s", actor.UserId, role.Name))
		return nil
	}
	if err := discord.GuildMemberRoleAdd(guildid, actor.UserId, role.ID, discordgo.WithAuditLogReason("Completed volunteer onboarding")); err != nil {
		return fmt.Errorf("could not assign role %s to member %s: %w", role.Name, actor.UserId, err)
	}
	log.Info().Msg(fmt.Sprintf("Assigned role %s to member %s", role.Name, actor.UserId))
	return nil
}

func logSubmission(discord Discord, channel *discordgo.Channel, record VolunteerRecord, mention string) error {
	if err := VolunteerSummary(record, mention).Send(discord, channel.ID); err != nil {
		return fmt.Errorf("could not post to channel %s: %w", channel.Name, err)
	}
	return nil
}

// Channels of the guild where a welcome can be posted when DMs fail:
// the system channel first, then the text channels from the top
func fallbackChannels(discord Discord, guildid string) ([]string, error) {

	candidates := []string{}
	guild, err := discord.Guild(guildid)
	if err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not fetch guild %s", guildid))
	} else if guild.SystemChannelID != "" {
		candidates = append(candidates, guild.SystemChannelID)
	}

	channels, err := discord.GuildChannels(guildid)
	if err != nil && len(candidates) == 0 {
		return nil, fmt.Errorf("could not list channels of guild %s: %w", guildid, err)
	}
	text := []*discordgo.Channel{}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildText && !slices.Contains(candidates, channel.ID) {
			text = append(text, channel)
		}
	}
	slices.SortStableFunc(text, func(a, b *discordgo.Channel) int { return a.Position - b.Position })
	for _, channel := range text {
		candidates = append(candidates, channel.ID)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("guild %s has no text channel", guildid)
	}
	return candidates, nil
}

// The message shown to the member for a failed step
func describeFailure(action string, name string, err error) string {
	if isForbidden(err) {
		return fmt.Sprintf("I don't have permission to %s `%s`", action, name)
	}
	return fmt.Sprintf("Could not %s `%s`", action, name)
}
